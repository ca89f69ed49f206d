package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried by a sync message. The worker treats anything other
// than a delete as an upsert.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// TransactionSyncMessage tells the worker that a transaction changed.
// It carries only the owner and transaction ids; the worker fetches the
// current document from the store, so a stale message is harmless.
type TransactionSyncMessage struct {
	OwnerID       string    `json:"ownerId"`
	TransactionID string    `json:"transactionId"`
	Op            string    `json:"op"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(ownerID, transactionID, op string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		OwnerID:       ownerID,
		TransactionID: transactionID,
		Op:            op,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// AlertMessage carries a due-date alert for downstream push channels.
// Nothing in this repo consumes it; delivery belongs to whoever binds
// the alerts queue.
type AlertMessage struct {
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
