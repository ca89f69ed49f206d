// Package store defines the persistence gateway consumed by the services
// layer: a document store keyed by owner. Implementations live in the
// sqlite and memory subpackages; the codec in this package normalizes raw
// documents into typed domain values so the rest of the code never touches
// partially-typed data.
package store

import (
	"context"
	"errors"
)

// Collection names. Every document in every collection carries a "userId"
// field identifying its owner.
const (
	CollAccounts     = "accounts"
	CollCategories   = "categories"
	CollTransactions = "transactions"
	CollRecurring    = "recurring_transactions"
	CollGoals        = "goals"
)

// OwnerField is the document field holding the owner id.
const OwnerField = "userId"

// Record is a decoded JSON document.
type Record map[string]any

type OpKind int

const (
	OpPut OpKind = iota + 1
	OpUpdate
	OpDelete
)

// Op is a single write in an atomic batch. Record holds the full document
// for OpPut, the partial patch for OpUpdate, and is nil for OpDelete.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Record     Record
}

func PutOp(collection, id string, rec Record) Op {
	return Op{Kind: OpPut, Collection: collection, ID: id, Record: rec}
}

func UpdateOp(collection, id string, patch Record) Op {
	return Op{Kind: OpUpdate, Collection: collection, ID: id, Record: patch}
}

func DeleteOp(collection, id string) Op {
	return Op{Kind: OpDelete, Collection: collection, ID: id}
}

// ErrNotFound is returned by GetByID and Update when no document exists
// under the given id.
var ErrNotFound = errors.New("document not found")

// ErrMissingOwner is returned by Put for a document lacking the owner
// field. The gateway never stores unowned records.
var ErrMissingOwner = errors.New("document has no owner")

// OwnerLister is an optional gateway extension used by batch workers to
// iterate every owner with documents in a collection. Implementations
// that can enumerate owners cheaply provide it; callers type-assert.
type OwnerLister interface {
	ListOwners(ctx context.Context, collection string) ([]string, error)
}

// Gateway is the minimal document-store contract the core consumes. It
// stays engine-agnostic: sqlite in production, memory in tests.
type Gateway interface {
	// QueryByOwner returns every document in collection owned by ownerID.
	QueryByOwner(ctx context.Context, collection, ownerID string) ([]Record, error)

	// GetByID returns a single document or ErrNotFound.
	GetByID(ctx context.Context, collection, id string) (Record, error)

	// Put upserts a full document.
	Put(ctx context.Context, collection, id string, rec Record) error

	// Update merges patch into an existing document, ErrNotFound if absent.
	Update(ctx context.Context, collection, id string, patch Record) error

	// Delete removes a document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, collection, id string) error

	// CommitAtomic applies all ops or none of them. Mutations that touch a
	// transaction and an account balance together go through here so a
	// crash can never leave the pair out of sync.
	CommitAtomic(ctx context.Context, ops []Op) error
}
