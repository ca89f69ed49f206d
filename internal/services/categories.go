package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/store"
)

// CategoryService manages the owner's categories and exposes the keyword
// suggestion heuristic over them.
type CategoryService struct {
	gw store.Gateway
}

func NewCategoryService(gw store.Gateway) *CategoryService {
	return &CategoryService{gw: gw}
}

// List returns the owner's categories; empty on gateway failure.
func (s *CategoryService) List(ctx context.Context, ownerID string) []core.Category {
	if err := requireOwner(ownerID); err != nil {
		return nil
	}
	recs, err := s.gw.QueryByOwner(ctx, store.CollCategories, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list categories, returning empty",
			"owner_id", ownerID, "error", err)
		return nil
	}
	categories := make([]core.Category, 0, len(recs))
	for _, rec := range recs {
		categories = append(categories, store.DecodeCategory(rec))
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Name == categories[j].Name {
			return categories[i].ID < categories[j].ID
		}
		return categories[i].Name < categories[j].Name
	})
	return categories
}

// Save upserts a category.
func (s *CategoryService) Save(ctx context.Context, ownerID string, category core.Category) (core.Category, error) {
	if err := requireOwner(ownerID); err != nil {
		return core.Category{}, err
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	category.OwnerID = ownerID
	if err := category.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.gw.Put(ctx, store.CollCategories, category.ID, store.EncodeCategory(category)); err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	return category, nil
}

// UpdateBudget sets the monthly budget ceiling for a category. A zero
// limit clears it.
func (s *CategoryService) UpdateBudget(ctx context.Context, ownerID, categoryID string, limit core.Money) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	if limit.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if _, err := loadOwned(ctx, s.gw, store.CollCategories, categoryID, ownerID); err != nil {
		return err
	}
	patch := store.Record{"budgetLimit": store.EncodeMoney(limit)}
	if err := s.gw.Update(ctx, store.CollCategories, categoryID, patch); err != nil {
		return fmt.Errorf("update category budget: %w", err)
	}
	slog.InfoContext(ctx, "Category budget updated",
		"category_id", categoryID,
		"owner_id", ownerID,
		"limit_cents", limit.Cents)
	return nil
}

// Suggest maps a description to one of the owner's category ids via the
// keyword heuristic. Read path: empty id on gateway failure.
func (s *CategoryService) Suggest(ctx context.Context, ownerID, description string) string {
	return SuggestCategory(s.List(ctx, ownerID), description)
}
