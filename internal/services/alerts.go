package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"contas/internal/core"
)

// Alert window: unpaid expenses due within the next soonWindowDays days
// produce an info alert; anything further out stays silent.
const soonWindowDays = 3

// UpcomingAlerts derives due-date notifications from the transaction set.
// Stateless: every scan runs from scratch and produces deterministic ids
// (`overdue-<id>`, `today-<id>`, `soon-<id>`), so callers can de-duplicate
// or dismiss by id without any persisted notification state. Paid
// transactions and non-expense types never alert.
func UpcomingAlerts(txs []core.Transaction, now time.Time) []core.AppNotification {
	today := core.Midnight(now)
	var alerts []core.AppNotification

	for _, tx := range txs {
		if tx.IsPaid || tx.Type != core.Expense || tx.Date.IsZero() {
			continue
		}
		due := core.Midnight(tx.Date)
		diffDays := int(math.Round(due.Sub(today).Hours() / 24))

		switch {
		case diffDays < 0:
			alerts = append(alerts, core.AppNotification{
				ID:      "overdue-" + tx.ID,
				Title:   "Conta Atrasada!",
				Message: fmt.Sprintf("A conta %q venceu há %d dias.", tx.Description, -diffDays),
				Type:    core.SeverityDanger,
				Date:    now,
			})
		case diffDays == 0:
			alerts = append(alerts, core.AppNotification{
				ID:      "today-" + tx.ID,
				Title:   "Vence Hoje",
				Message: fmt.Sprintf("A conta %q vence hoje.", tx.Description),
				Type:    core.SeverityWarning,
				Date:    now,
			})
		case diffDays <= soonWindowDays:
			alerts = append(alerts, core.AppNotification{
				ID:      "soon-" + tx.ID,
				Title:   "Vence em Breve",
				Message: fmt.Sprintf("%q vence em %d dias.", tx.Description, diffDays),
				Type:    core.SeverityInfo,
				Date:    now,
			})
		}
	}
	return alerts
}

// CheckUpcomingAlerts scans the owner's transactions and returns the
// derived notifications. Read path: degrades to empty on failure.
func (l *Ledger) CheckUpcomingAlerts(ctx context.Context, ownerID string, now time.Time) []core.AppNotification {
	return UpcomingAlerts(l.ListTransactions(ctx, ownerID), now)
}
