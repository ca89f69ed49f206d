package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/store"
)

// Defaults seeded for a new owner. Ids are generated per owner at seed
// time; these literals only carry the shape.
var defaultCategories = []core.Category{
	{Name: "Moradia", Color: "#ef4444", Icon: "home"},
	{Name: "Alimentação", Color: "#f59e0b", Icon: "shopping-cart", BudgetLimit: core.Money{Cents: 120000}},
	{Name: "Transporte", Color: "#3b82f6", Icon: "car"},
	{Name: "Lazer", Color: "#8b5cf6", Icon: "party-popper"},
	{Name: "Saúde", Color: "#10b981", Icon: "heart-pulse"},
	{Name: "Educação", Color: "#6366f1", Icon: "graduation-cap"},
	{Name: "Salário", Color: "#10b981", Icon: "banknote"},
	{Name: "Investimentos", Color: "#8b5cf6", Icon: "trending-up"},
	{Name: "Outros", Color: "#9ca3af", Icon: "circle-dashed"},
}

var defaultAccounts = []core.Account{
	{Name: "Nubank (Conta)", Type: core.AccountChecking, Balance: core.Money{Cents: 250000}, Icon: "landmark"},
	{Name: "Carteira Física", Type: core.AccountCash, Balance: core.Money{Cents: 15000}, Icon: "wallet"},
	{Name: "Nubank (Cartão)", Type: core.AccountCreditCard, Balance: core.Money{Cents: 120000},
		ClosingDay: 25, DueDay: 5, Limit: core.Money{Cents: 500000}, Icon: "credit-card"},
	{Name: "Reserva Emergência", Type: core.AccountInvestment, Balance: core.Money{Cents: 1000000}, Icon: "trending-up"},
}

// Seeder provisions the default categories and accounts for new owners.
type Seeder struct {
	gw store.Gateway
}

func NewSeeder(gw store.Gateway) *Seeder {
	return &Seeder{gw: gw}
}

// EnsureDefaults seeds categories and accounts for an owner that has
// none. Idempotent: an owner with any existing document in a collection
// keeps it untouched. Each collection seeds in a single atomic batch.
func (s *Seeder) EnsureDefaults(ctx context.Context, ownerID string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	cats, err := s.gw.QueryByOwner(ctx, store.CollCategories, ownerID)
	if err != nil {
		return fmt.Errorf("check existing categories: %w", err)
	}
	if len(cats) == 0 {
		ops := make([]store.Op, 0, len(defaultCategories))
		for _, c := range defaultCategories {
			c.ID = uuid.NewString()
			c.OwnerID = ownerID
			ops = append(ops, store.PutOp(store.CollCategories, c.ID, store.EncodeCategory(c)))
		}
		if err := s.gw.CommitAtomic(ctx, ops); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		slog.InfoContext(ctx, "Seeded default categories",
			"owner_id", ownerID, "count", len(defaultCategories))
	}

	accs, err := s.gw.QueryByOwner(ctx, store.CollAccounts, ownerID)
	if err != nil {
		return fmt.Errorf("check existing accounts: %w", err)
	}
	if len(accs) == 0 {
		ops := make([]store.Op, 0, len(defaultAccounts))
		for _, a := range defaultAccounts {
			a.ID = uuid.NewString()
			a.OwnerID = ownerID
			ops = append(ops, store.PutOp(store.CollAccounts, a.ID, store.EncodeAccount(a)))
		}
		if err := s.gw.CommitAtomic(ctx, ops); err != nil {
			return fmt.Errorf("seed accounts: %w", err)
		}
		slog.InfoContext(ctx, "Seeded default accounts",
			"owner_id", ownerID, "count", len(defaultAccounts))
	}

	return nil
}
