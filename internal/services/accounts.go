package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/store"
)

// AccountService manages the owner's accounts. Balance mutations from
// transactions go through the Ledger; this service only covers direct
// CRUD, including manual balance edits (the only path that pays down a
// credit-card bill today).
type AccountService struct {
	gw store.Gateway
}

func NewAccountService(gw store.Gateway) *AccountService {
	return &AccountService{gw: gw}
}

// List returns the owner's accounts; empty on gateway failure.
func (s *AccountService) List(ctx context.Context, ownerID string) []core.Account {
	if err := requireOwner(ownerID); err != nil {
		return nil
	}
	recs, err := s.gw.QueryByOwner(ctx, store.CollAccounts, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list accounts, returning empty",
			"owner_id", ownerID, "error", err)
		return nil
	}
	accounts := make([]core.Account, 0, len(recs))
	for _, rec := range recs {
		accounts = append(accounts, store.DecodeAccount(rec))
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Name == accounts[j].Name {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].Name < accounts[j].Name
	})
	return accounts
}

// Save upserts an account. A blank id means create; saving over an
// existing id belonging to another owner fails with ErrOwnerMismatch.
func (s *AccountService) Save(ctx context.Context, ownerID string, account core.Account) (core.Account, error) {
	if err := requireOwner(ownerID); err != nil {
		return core.Account{}, err
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.OwnerID = ownerID
	if err := account.Validate(); err != nil {
		return core.Account{}, err
	}

	if existing, err := s.gw.GetByID(ctx, store.CollAccounts, account.ID); err == nil {
		if owner, _ := existing[store.OwnerField].(string); owner != "" && owner != ownerID {
			return core.Account{}, core.ErrOwnerMismatch
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return core.Account{}, fmt.Errorf("check account owner: %w", err)
	}

	if err := s.gw.Put(ctx, store.CollAccounts, account.ID, store.EncodeAccount(account)); err != nil {
		return core.Account{}, fmt.Errorf("save account: %w", err)
	}
	slog.InfoContext(ctx, "Account saved",
		"account_id", account.ID,
		"owner_id", ownerID,
		"type", string(account.Type),
		"balance_cents", account.Balance.Cents)
	return account, nil
}

// Delete removes an account. Transactions referencing it are left in
// place; readers tolerate the dangling reference.
func (s *AccountService) Delete(ctx context.Context, ownerID, accountID string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	if _, err := loadOwned(ctx, s.gw, store.CollAccounts, accountID, ownerID); err != nil {
		return err
	}
	if err := s.gw.Delete(ctx, store.CollAccounts, accountID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	slog.InfoContext(ctx, "Account deleted", "account_id", accountID, "owner_id", ownerID)
	return nil
}
