package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/store"
)

// RecurringProcessor materializes due recurring templates into concrete
// unpaid transactions and advances each template's next-due date.
type RecurringProcessor struct {
	gw     store.Gateway
	ledger *Ledger
}

func NewRecurringProcessor(gw store.Gateway, ledger *Ledger) *RecurringProcessor {
	return &RecurringProcessor{gw: gw, ledger: ledger}
}

// AddTemplate persists a new recurring template for the owner.
func (p *RecurringProcessor) AddTemplate(ctx context.Context, ownerID string, tpl core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := requireOwner(ownerID); err != nil {
		return core.RecurringTransaction{}, err
	}
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	tpl.OwnerID = ownerID
	if err := tpl.Validate(); err != nil {
		return core.RecurringTransaction{}, err
	}
	if err := p.gw.Put(ctx, store.CollRecurring, tpl.ID, store.EncodeRecurring(tpl)); err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("save recurring template: %w", err)
	}
	slog.InfoContext(ctx, "Recurring template created",
		"template_id", tpl.ID,
		"owner_id", ownerID,
		"frequency", string(tpl.Frequency),
		"next_due", tpl.NextDueDate.Format("2006-01-02"))
	return tpl, nil
}

// ListTemplates returns the owner's templates; empty on gateway failure.
func (p *RecurringProcessor) ListTemplates(ctx context.Context, ownerID string) []core.RecurringTransaction {
	if err := requireOwner(ownerID); err != nil {
		return nil
	}
	recs, err := p.gw.QueryByOwner(ctx, store.CollRecurring, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list recurring templates, returning empty",
			"owner_id", ownerID, "error", err)
		return nil
	}
	out := make([]core.RecurringTransaction, 0, len(recs))
	for _, rec := range recs {
		out = append(out, store.DecodeRecurring(rec))
	}
	return out
}

// ProcessDue walks the owner's active templates and, for each one whose
// next-due date has arrived (date-only comparison), materializes exactly
// one unpaid occurrence and advances the template by one period computed
// from the previous due date, not from today. Overdue templates catch up
// one occurrence per pass. A failure in one template never blocks the
// rest. Returns the number of occurrences generated.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, ownerID string, now time.Time) (int, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}
	recs, err := p.gw.QueryByOwner(ctx, store.CollRecurring, ownerID)
	if err != nil {
		return 0, fmt.Errorf("query recurring templates: %w", err)
	}

	today := core.Midnight(now)
	processed := 0

	for _, rec := range recs {
		tpl := store.DecodeRecurring(rec)
		if !tpl.Active || tpl.NextDueDate.IsZero() {
			continue
		}
		if core.Midnight(tpl.NextDueDate).After(today) {
			continue
		}

		tx := core.Transaction{
			ID:          uuid.NewString(),
			Description: tpl.Description,
			Value:       tpl.Value,
			Type:        tpl.Type,
			CategoryID:  tpl.CategoryID,
			AccountID:   tpl.AccountID,
			Date:        tpl.NextDueDate,
			IsPaid:      false,
			IsRecurring: true,
		}
		if _, err := p.ledger.CreateTransaction(ctx, ownerID, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring occurrence",
				"template_id", tpl.ID,
				"description", tpl.Description,
				"error", err)
			continue
		}

		next := Advance(tpl.NextDueDate, tpl.Frequency)
		patch := store.Record{
			"nextDueDate":       next.UTC().Format(time.RFC3339),
			"lastGeneratedDate": now.UTC().Format(time.RFC3339),
		}
		if err := p.gw.Update(ctx, store.CollRecurring, tpl.ID, patch); err != nil {
			// The occurrence exists but the template did not advance; the
			// next pass would duplicate it, so this is worth a loud log.
			slog.ErrorContext(ctx, "Failed to advance recurring template after materializing",
				"template_id", tpl.ID,
				"error", err)
			continue
		}

		processed++
		slog.InfoContext(ctx, "Materialized recurring transaction",
			"template_id", tpl.ID,
			"transaction_id", tx.ID,
			"value_cents", tx.Value.Cents,
			"due_date", tpl.NextDueDate.Format("2006-01-02"),
			"next_due", next.Format("2006-01-02"))
	}

	return processed, nil
}

// ProcessAll runs ProcessDue for every owner that has templates. Requires
// a gateway that can enumerate owners.
func (p *RecurringProcessor) ProcessAll(ctx context.Context, now time.Time) (int, error) {
	lister, ok := p.gw.(store.OwnerLister)
	if !ok {
		return 0, fmt.Errorf("gateway cannot enumerate owners")
	}
	owners, err := lister.ListOwners(ctx, store.CollRecurring)
	if err != nil {
		return 0, fmt.Errorf("list owners: %w", err)
	}

	total := 0
	for _, owner := range owners {
		n, err := p.ProcessDue(ctx, owner, now)
		if err != nil {
			slog.ErrorContext(ctx, "Recurring pass failed for owner",
				"owner_id", owner, "error", err)
			continue
		}
		total += n
	}
	return total, nil
}

// Advance returns the due date one period after prev. Monthly and yearly
// steps use calendar arithmetic, so a Jan 31 monthly template lands on
// the normalized date the standard library produces for Feb 31.
func Advance(prev time.Time, freq core.Frequency) time.Time {
	switch freq {
	case core.Daily:
		return prev.AddDate(0, 0, 1)
	case core.Weekly:
		return prev.AddDate(0, 0, 7)
	case core.Monthly:
		return prev.AddDate(0, 1, 0)
	case core.Yearly:
		return prev.AddDate(1, 0, 0)
	}
	return prev
}
