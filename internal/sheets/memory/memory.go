package memory

import (
	"context"
	"errors"
	"sync"

	ports "contas/internal/sheets"
)

// Mirror is an in-memory stand-in for the spreadsheet, used in tests
// and when no spreadsheet is configured.
type Mirror struct {
	mu    sync.Mutex
	rows  map[string]ports.TransactionRow
	order []string
}

var _ ports.TransactionMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{rows: map[string]ports.TransactionRow{}}
}

func (m *Mirror) Upsert(_ context.Context, row ports.TransactionRow) error {
	if row.ID == "" {
		return errors.New("missing transaction id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[row.ID]; !ok {
		m.order = append(m.order, row.ID)
	}
	m.rows[row.ID] = row
	return nil
}

func (m *Mirror) Delete(_ context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[transactionID]; !ok {
		return nil
	}
	delete(m.rows, transactionID)
	for i, id := range m.order {
		if id == transactionID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Rows returns the mirrored rows in insertion order.
func (m *Mirror) Rows() []ports.TransactionRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.TransactionRow, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.rows[id])
	}
	return out
}
