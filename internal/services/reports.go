package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"contas/internal/core"
	"contas/internal/store"
)

// DashboardData is the aggregate snapshot behind the dashboard header.
type DashboardData struct {
	RealBalance      core.Money
	ProjectedBalance core.Money
	MonthlyIncome    core.Money
	MonthlyExpense   core.Money
}

// MonthlyPoint is one month bucket of the income/expense history chart.
type MonthlyPoint struct {
	Name    string // "M/YYYY"
	Income  core.Money
	Expense core.Money
}

// CategorySpend is one slice of the expenses-by-category breakdown.
type CategorySpend struct {
	Name  string
	Color string
	Value core.Money
}

const (
	fallbackCategoryName  = "Outros"
	fallbackCategoryColor = "#9ca3af"
)

// CalculateBalances computes the dashboard snapshot: the real balance is
// the sum of all non-credit-card accounts, the projected balance
// subtracts the open credit-card bills. Monthly income and expense sum
// every transaction of the current calendar month regardless of paid
// state; only the report aggregates filter on paid. On gateway failure
// it returns a zeroed snapshot.
func (l *Ledger) CalculateBalances(ctx context.Context, ownerID string, now time.Time) DashboardData {
	accounts, err := l.fetchAccounts(ctx, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to calculate balances, returning zeroed snapshot",
			"owner_id", ownerID, "error", err)
		return DashboardData{}
	}
	txs, err := l.fetchTransactions(ctx, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to calculate balances, returning zeroed snapshot",
			"owner_id", ownerID, "error", err)
		return DashboardData{}
	}

	var real, bill int64
	for _, a := range accounts {
		if a.Type == core.AccountCreditCard {
			bill += a.Balance.Cents
		} else {
			real += a.Balance.Cents
		}
	}

	var income, expense int64
	for _, tx := range txs {
		if !core.SameMonth(tx.Date, now) {
			continue
		}
		switch tx.Type {
		case core.Income:
			income += tx.Value.Cents
		case core.Expense:
			expense += tx.Value.Cents
		}
	}

	return DashboardData{
		RealBalance:      core.Money{Cents: real},
		ProjectedBalance: core.Money{Cents: real - bill},
		MonthlyIncome:    core.Money{Cents: income},
		MonthlyExpense:   core.Money{Cents: expense},
	}
}

// GetMonthlyHistory buckets paid transactions by calendar month over a
// trailing window of months, oldest bucket first. Months with no
// activity stay as zero-filled buckets.
func (l *Ledger) GetMonthlyHistory(ctx context.Context, ownerID string, months int, now time.Time) []MonthlyPoint {
	if months < 1 {
		months = 1
	}
	txs, err := l.fetchTransactions(ctx, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build monthly history, returning empty",
			"owner_id", ownerID, "error", err)
		return nil
	}

	base := firstOfMonth(now)
	points := make([]MonthlyPoint, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		m := base.AddDate(0, i-(months-1), 0)
		key := monthKey(m)
		points[i] = MonthlyPoint{Name: key}
		index[key] = i
	}

	start := base.AddDate(0, -months, 0)
	for _, tx := range txs {
		if !tx.IsPaid || tx.Date.Before(start) {
			continue
		}
		i, ok := index[monthKey(tx.Date)]
		if !ok {
			continue
		}
		switch tx.Type {
		case core.Income:
			points[i].Income.Cents += tx.Value.Cents
		case core.Expense:
			points[i].Expense.Cents += tx.Value.Cents
		}
	}
	return points
}

// GetExpensesByCategory sums paid expenses since the first day of the
// trailing window, grouped by category and sorted by value descending.
// Categories with zero spend are omitted; dangling category references
// fall back to a generic bucket.
func (l *Ledger) GetExpensesByCategory(ctx context.Context, ownerID string, months int, now time.Time) []CategorySpend {
	if months < 1 {
		months = 1
	}
	txs, err := l.fetchTransactions(ctx, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build category breakdown, returning empty",
			"owner_id", ownerID, "error", err)
		return nil
	}
	recs, err := l.gw.QueryByOwner(ctx, store.CollCategories, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load categories, returning empty breakdown",
			"owner_id", ownerID, "error", err)
		return nil
	}
	categories := make(map[string]core.Category, len(recs))
	for _, rec := range recs {
		c := store.DecodeCategory(rec)
		categories[c.ID] = c
	}

	start := firstOfMonth(now).AddDate(0, -months, 0)
	sums := map[string]int64{}
	for _, tx := range txs {
		if tx.Type != core.Expense || !tx.IsPaid || tx.Date.Before(start) {
			continue
		}
		sums[tx.CategoryID] += tx.Value.Cents
	}

	out := make([]CategorySpend, 0, len(sums))
	for id, cents := range sums {
		name, color := fallbackCategoryName, fallbackCategoryColor
		if cat, ok := categories[id]; ok {
			name, color = cat.Name, cat.Color
		}
		out = append(out, CategorySpend{Name: name, Color: color, Value: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value.Cents == out[j].Value.Cents {
			return out[i].Name < out[j].Name
		}
		return out[i].Value.Cents > out[j].Value.Cents
	})
	return out
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Year())
}
