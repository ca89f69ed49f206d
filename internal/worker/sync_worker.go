package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/sheets"
	"contas/internal/store"
)

// SyncWorker keeps the mirror spreadsheet in step with the transaction
// store. Messages carry only ids; the worker loads the current document
// before writing, so replays and out-of-order deliveries converge.
type SyncWorker struct {
	gw     store.Gateway
	mirror sheets.TransactionMirror
}

func NewSyncWorker(gw store.Gateway, mirror sheets.TransactionMirror) *SyncWorker {
	return &SyncWorker{gw: gw, mirror: mirror}
}

// HandleMessage processes one sync message. Returning an error requeues
// the delivery, so transient mirror failures retry; a transaction that
// vanished between publish and delivery is treated as a late delete.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	if msg.Op == amqp.OpDelete {
		return w.handleDelete(ctx, msg)
	}
	return w.handleUpsert(ctx, msg)
}

func (w *SyncWorker) handleUpsert(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	rec, err := w.gw.GetByID(ctx, store.CollTransactions, msg.TransactionID)
	if errors.Is(err, store.ErrNotFound) {
		slog.WarnContext(ctx, "Transaction gone before sync, clearing mirror row",
			"transaction_id", msg.TransactionID)
		return w.mirror.Delete(ctx, msg.TransactionID)
	}
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}

	tx := store.DecodeTransaction(rec)
	if tx.OwnerID != msg.OwnerID {
		slog.WarnContext(ctx, "Sync message owner does not match stored transaction, dropping",
			"transaction_id", msg.TransactionID,
			"message_owner", msg.OwnerID,
			"stored_owner", tx.OwnerID)
		return nil
	}

	row := sheets.TransactionRow{
		ID:          tx.ID,
		OwnerID:     tx.OwnerID,
		Date:        tx.Date,
		Description: tx.Description,
		Category:    w.categoryName(ctx, tx),
		Account:     w.accountName(ctx, tx),
		Type:        string(tx.Type),
		Value:       tx.Value.Reais(),
		IsPaid:      tx.IsPaid,
	}
	if err := w.mirror.Upsert(ctx, row); err != nil {
		return fmt.Errorf("mirror transaction: %w", err)
	}

	slog.InfoContext(ctx, "Synced transaction to mirror",
		"transaction_id", tx.ID,
		"owner_id", tx.OwnerID,
		"value_cents", tx.Value.Cents)
	return nil
}

func (w *SyncWorker) handleDelete(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	if err := w.mirror.Delete(ctx, msg.TransactionID); err != nil {
		return fmt.Errorf("delete mirrored transaction: %w", err)
	}
	slog.InfoContext(ctx, "Removed transaction from mirror",
		"transaction_id", msg.TransactionID)
	return nil
}

// Display names are best-effort: a dangling reference mirrors as the
// raw id rather than blocking the sync.
func (w *SyncWorker) categoryName(ctx context.Context, tx core.Transaction) string {
	if tx.CategoryID == "" {
		return ""
	}
	rec, err := w.gw.GetByID(ctx, store.CollCategories, tx.CategoryID)
	if err != nil {
		return tx.CategoryID
	}
	return store.DecodeCategory(rec).Name
}

func (w *SyncWorker) accountName(ctx context.Context, tx core.Transaction) string {
	if tx.AccountID == "" {
		return ""
	}
	rec, err := w.gw.GetByID(ctx, store.CollAccounts, tx.AccountID)
	if err != nil {
		return tx.AccountID
	}
	return store.DecodeAccount(rec).Name
}
