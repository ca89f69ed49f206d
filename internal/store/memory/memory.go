// Package memory implements the store.Gateway contract on a mutex-guarded
// map. It backs tests and the default local backend.
package memory

import (
	"context"
	"fmt"
	"sync"

	"contas/internal/store"
)

type Gateway struct {
	mu   sync.Mutex
	docs map[string]map[string]store.Record // collection -> id -> document
}

var _ store.Gateway = (*Gateway)(nil)

func New() *Gateway {
	return &Gateway{docs: make(map[string]map[string]store.Record)}
}

func (g *Gateway) QueryByOwner(_ context.Context, collection, ownerID string) ([]store.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []store.Record
	for _, rec := range g.docs[collection] {
		if owner, _ := rec[store.OwnerField].(string); owner == ownerID {
			out = append(out, clone(rec))
		}
	}
	return out, nil
}

// ListOwners implements store.OwnerLister.
func (g *Gateway) ListOwners(_ context.Context, collection string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	seen := map[string]struct{}{}
	var owners []string
	for _, rec := range g.docs[collection] {
		owner, _ := rec[store.OwnerField].(string)
		if owner == "" {
			continue
		}
		if _, ok := seen[owner]; ok {
			continue
		}
		seen[owner] = struct{}{}
		owners = append(owners, owner)
	}
	return owners, nil
}

func (g *Gateway) GetByID(_ context.Context, collection, id string) (store.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.docs[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(rec), nil
}

func (g *Gateway) Put(_ context.Context, collection, id string, rec store.Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.put(collection, id, rec)
}

func (g *Gateway) Update(_ context.Context, collection, id string, patch store.Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.update(collection, id, patch)
}

func (g *Gateway) Delete(_ context.Context, collection, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delete(collection, id)
	return nil
}

// CommitAtomic validates every op against a scratch copy first, then
// applies the batch. Either all ops land or none of them do.
func (g *Gateway) CommitAtomic(_ context.Context, ops []store.Op) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	staged := g.snapshot()
	for _, op := range ops {
		if err := staged.apply(op); err != nil {
			return fmt.Errorf("atomic batch aborted at %s/%s: %w", op.Collection, op.ID, err)
		}
	}
	g.docs = staged.docs
	return nil
}

func (g *Gateway) put(collection, id string, rec store.Record) error {
	if owner, _ := rec[store.OwnerField].(string); owner == "" {
		return store.ErrMissingOwner
	}
	coll, ok := g.docs[collection]
	if !ok {
		coll = make(map[string]store.Record)
		g.docs[collection] = coll
	}
	coll[id] = clone(rec)
	return nil
}

func (g *Gateway) update(collection, id string, patch store.Record) error {
	rec, ok := g.docs[collection][id]
	if !ok {
		return store.ErrNotFound
	}
	merged := clone(rec)
	for k, v := range patch {
		merged[k] = v
	}
	g.docs[collection][id] = merged
	return nil
}

func (g *Gateway) delete(collection, id string) {
	delete(g.docs[collection], id)
}

func (g *Gateway) apply(op store.Op) error {
	switch op.Kind {
	case store.OpPut:
		return g.put(op.Collection, op.ID, op.Record)
	case store.OpUpdate:
		return g.update(op.Collection, op.ID, op.Record)
	case store.OpDelete:
		g.delete(op.Collection, op.ID)
		return nil
	default:
		return fmt.Errorf("unknown op kind %d", op.Kind)
	}
}

// snapshot returns a gateway sharing no map structure with the receiver.
// Caller must hold g.mu.
func (g *Gateway) snapshot() *Gateway {
	cp := &Gateway{docs: make(map[string]map[string]store.Record, len(g.docs))}
	for coll, recs := range g.docs {
		cp.docs[coll] = make(map[string]store.Record, len(recs))
		for id, rec := range recs {
			cp.docs[coll][id] = clone(rec)
		}
	}
	return cp
}

func clone(rec store.Record) store.Record {
	out := make(store.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
