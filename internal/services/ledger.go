// Package services holds the business logic of the tracker: the ledger
// engine that keeps account balances consistent with paid transactions,
// the recurrence expander, the alerting rules and the category heuristic.
// Every operation takes an explicit owner id; there is no ambient user.
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

// SyncPublisher mirrors committed transaction mutations to the message
// bus. Publishing is best-effort: a bus failure never fails a mutation.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, ownerID, txID string) error
	PublishTransactionDelete(ctx context.Context, ownerID, txID string) error
}

// Ledger applies and reverses the balance effect of transactions and
// computes the read-only aggregates behind the dashboard and reports.
type Ledger struct {
	gw  store.Gateway
	bus SyncPublisher
}

func NewLedger(gw store.Gateway, bus SyncPublisher) *Ledger {
	return &Ledger{gw: gw, bus: bus}
}

// BalanceDelta is the signed effect, in cents, a transaction has on its
// account once paid. Credit-card balances track the amount owed, so an
// expense against a card grows the balance instead of shrinking it.
// Transfers are not wired into balance logic and always yield zero.
func BalanceDelta(tx core.Transaction, accountType core.AccountType) int64 {
	if !tx.IsPaid {
		return 0
	}
	switch tx.Type {
	case core.Income:
		return tx.Value.Cents
	case core.Expense:
		if accountType == core.AccountCreditCard {
			return tx.Value.Cents
		}
		return -tx.Value.Cents
	}
	return 0
}

// CreateTransaction persists a new transaction and, when paid, applies
// its balance effect to the account in the same atomic commit.
func (l *Ledger) CreateTransaction(ctx context.Context, ownerID string, tx core.Transaction) (core.Transaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.OwnerID = ownerID
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.Type == core.Transfer {
		slog.WarnContext(ctx, "Transfer transactions have no balance effect",
			"transaction_id", tx.ID, "owner_id", ownerID)
	}

	ops := []store.Op{store.PutOp(store.CollTransactions, tx.ID, store.EncodeTransaction(tx))}

	account, err := l.loadAccount(ctx, ownerID, tx.AccountID)
	if err != nil {
		return core.Transaction{}, err
	}
	if delta := BalanceDelta(tx, account.Type); delta != 0 {
		ops = append(ops, balanceOp(account, delta))
	}

	if err := l.gw.CommitAtomic(ctx, ops); err != nil {
		return core.Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", tx.ID,
		"owner_id", ownerID,
		"type", string(tx.Type),
		"value_cents", tx.Value.Cents,
		"is_paid", tx.IsPaid)

	l.publishSync(ctx, ownerID, tx.ID)
	return tx, nil
}

// UpdateTransaction re-derives the balance effect of an edit: the old
// effect is reversed against the account the transaction was previously
// attached to, the new effect applied against the (possibly different)
// current account, and everything commits atomically.
func (l *Ledger) UpdateTransaction(ctx context.Context, ownerID string, tx core.Transaction) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	tx.OwnerID = ownerID
	if err := tx.Validate(); err != nil {
		return err
	}

	prevRec, err := loadOwned(ctx, l.gw, store.CollTransactions, tx.ID, ownerID)
	if err != nil {
		return err
	}
	prev := store.DecodeTransaction(prevRec)

	// Net delta per account: reversal of the old effect plus the new one.
	deltas := map[string]int64{}
	accountTypes := map[string]core.AccountType{}

	prevAccount, err := l.loadAccount(ctx, ownerID, prev.AccountID)
	if err != nil {
		return err
	}
	accountTypes[prevAccount.ID] = prevAccount.Type
	deltas[prevAccount.ID] -= BalanceDelta(prev, prevAccount.Type)

	newAccount := prevAccount
	if tx.AccountID != prev.AccountID {
		newAccount, err = l.loadAccount(ctx, ownerID, tx.AccountID)
		if err != nil {
			return err
		}
		accountTypes[newAccount.ID] = newAccount.Type
	}
	deltas[newAccount.ID] += BalanceDelta(tx, newAccount.Type)

	ops := []store.Op{store.PutOp(store.CollTransactions, tx.ID, store.EncodeTransaction(tx))}
	for _, account := range []core.Account{prevAccount, newAccount} {
		delta, ok := deltas[account.ID]
		if !ok || delta == 0 {
			continue
		}
		delete(deltas, account.ID)
		ops = append(ops, balanceOp(account, delta))
	}

	if err := l.gw.CommitAtomic(ctx, ops); err != nil {
		return fmt.Errorf("commit transaction update: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated",
		"transaction_id", tx.ID,
		"owner_id", ownerID,
		"value_cents", tx.Value.Cents,
		"is_paid", tx.IsPaid)

	l.publishSync(ctx, ownerID, tx.ID)
	return nil
}

// DeleteTransaction removes a transaction, reversing any balance effect
// it had applied.
func (l *Ledger) DeleteTransaction(ctx context.Context, ownerID, txID string) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	rec, err := loadOwned(ctx, l.gw, store.CollTransactions, txID, ownerID)
	if err != nil {
		return err
	}
	tx := store.DecodeTransaction(rec)

	ops := []store.Op{store.DeleteOp(store.CollTransactions, txID)}
	if tx.IsPaid {
		account, err := l.loadAccount(ctx, ownerID, tx.AccountID)
		if err != nil {
			return err
		}
		if delta := BalanceDelta(tx, account.Type); delta != 0 {
			ops = append(ops, balanceOp(account, -delta))
		}
	}

	if err := l.gw.CommitAtomic(ctx, ops); err != nil {
		return fmt.Errorf("commit transaction delete: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted",
		"transaction_id", txID, "owner_id", ownerID)

	if l.bus != nil {
		if err := l.bus.PublishTransactionDelete(ctx, ownerID, txID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message",
				"transaction_id", txID, "error", err)
		}
	}
	return nil
}

// ListTransactions returns the owner's transactions sorted by date
// descending. Like every read path it degrades to an empty result on
// gateway failure so dashboards never crash.
func (l *Ledger) ListTransactions(ctx context.Context, ownerID string) []core.Transaction {
	txs, err := l.fetchTransactions(ctx, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list transactions, returning empty",
			"owner_id", ownerID, "error", err)
		return nil
	}
	return txs
}

func (l *Ledger) fetchTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	recs, err := l.gw.QueryByOwner(ctx, store.CollTransactions, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	txs := make([]core.Transaction, 0, len(recs))
	for _, rec := range recs {
		txs = append(txs, store.DecodeTransaction(rec))
	}
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Date.Equal(txs[j].Date) {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].Date.After(txs[j].Date)
	})
	return txs, nil
}

func (l *Ledger) fetchAccounts(ctx context.Context, ownerID string) ([]core.Account, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	recs, err := l.gw.QueryByOwner(ctx, store.CollAccounts, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	accounts := make([]core.Account, 0, len(recs))
	for _, rec := range recs {
		accounts = append(accounts, store.DecodeAccount(rec))
	}
	return accounts, nil
}

func (l *Ledger) loadAccount(ctx context.Context, ownerID, accountID string) (core.Account, error) {
	if accountID == "" {
		return core.Account{}, core.ErrMissingAccount
	}
	rec, err := loadOwned(ctx, l.gw, store.CollAccounts, accountID, ownerID)
	if err != nil {
		return core.Account{}, err
	}
	return store.DecodeAccount(rec), nil
}

func (l *Ledger) publishSync(ctx context.Context, ownerID, txID string) {
	if l.bus == nil {
		return
	}
	if err := l.bus.PublishTransactionSync(ctx, ownerID, txID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"transaction_id", txID, "error", err)
	}
}

func balanceOp(account core.Account, delta int64) store.Op {
	newBalance := core.Money{Cents: account.Balance.Cents + delta}
	return store.UpdateOp(store.CollAccounts, account.ID, store.Record{
		"balance": store.EncodeMoney(newBalance),
	})
}

func requireOwner(ownerID string) error {
	if ownerID == "" {
		return core.ErrNotAuthenticated
	}
	return nil
}

// loadOwned fetches a document and verifies it belongs to ownerID. A
// foreign document is a security fault, reported as ErrOwnerMismatch and
// never silently ignored.
func loadOwned(ctx context.Context, gw store.Gateway, collection, id, ownerID string) (store.Record, error) {
	rec, err := gw.GetByID(ctx, collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, core.ErrNotFound)
		}
		return nil, fmt.Errorf("load %s/%s: %w", collection, id, err)
	}
	if owner, _ := rec[store.OwnerField].(string); owner != ownerID {
		return nil, core.ErrOwnerMismatch
	}
	return rec, nil
}
