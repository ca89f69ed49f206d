package sheets

import (
	"context"
	"time"
)

// TransactionRow is the flattened, human-readable form of a transaction
// as it appears in the mirror spreadsheet. Category and Account carry
// display names, not ids.
type TransactionRow struct {
	ID          string
	OwnerID     string
	Date        time.Time
	Description string
	Category    string
	Account     string
	Type        string
	Value       float64
	IsPaid      bool
}

// TransactionMirror is the outbound port for the spreadsheet mirror.
// Upsert is keyed by the transaction id, so replayed messages converge
// on the same row.
type TransactionMirror interface {
	Upsert(ctx context.Context, row TransactionRow) error
	Delete(ctx context.Context, transactionID string) error
}
