package services

import (
	"strings"

	"contas/internal/core"
)

// Keyword table for the category suggestion heuristic. Matching is
// case-insensitive substring search over the description; the first
// group with a hit wins.
var suggestionTable = []struct {
	category string
	keywords []string
}{
	{"Transporte", []string{"uber", "99", "posto", "gasolina"}},
	{"Alimentação", []string{"ifood", "mercado", "padaria", "restaurante"}},
	{"Lazer", []string{"netflix", "spotify", "cinema"}},
	{"Saúde", []string{"farmacia", "médico", "exame"}},
}

// SuggestCategory maps a free-text description to a category id from the
// supplied list. Unmatched text falls back to the first category in the
// list; an empty list yields an empty id. Pure function.
func SuggestCategory(categories []core.Category, description string) string {
	lower := strings.ToLower(description)

	for _, group := range suggestionTable {
		for _, kw := range group.keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			for _, c := range categories {
				if c.Name == group.category {
					return c.ID
				}
			}
			return ""
		}
	}

	if len(categories) > 0 {
		return categories[0].ID
	}
	return ""
}
