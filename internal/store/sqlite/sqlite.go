// Package sqlite implements the store.Gateway contract on a single
// SQLite table of JSON documents keyed by (collection, id) and indexed by
// owner. SQLite transactions back CommitAtomic.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"contas/internal/store"

	_ "modernc.org/sqlite"
)

type Gateway struct {
	db *sql.DB
}

var _ store.Gateway = (*Gateway)(nil)

func New(dbPath string) (*Gateway, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Gateway{db: db}, nil
}

func (g *Gateway) Close() error {
	if g.db != nil {
		return g.db.Close()
	}
	return nil
}

func (g *Gateway) QueryByOwner(ctx context.Context, collection, ownerID string) ([]store.Record, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND owner_id = ?`,
		collection, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query %s by owner: %w", collection, err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var rec store.Record
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return out, nil
}

// ListOwners implements store.OwnerLister.
func (g *Gateway) ListOwners(ctx context.Context, collection string) ([]string, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT DISTINCT owner_id FROM documents WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("list owners of %s: %w", collection, err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}
	return owners, nil
}

func (g *Gateway) GetByID(ctx context.Context, collection, id string) (store.Record, error) {
	var body []byte
	err := g.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}

	var rec store.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

func (g *Gateway) Put(ctx context.Context, collection, id string, rec store.Record) error {
	return g.inTx(ctx, func(tx *sql.Tx) error {
		return put(ctx, tx, collection, id, rec)
	})
}

func (g *Gateway) Update(ctx context.Context, collection, id string, patch store.Record) error {
	return g.inTx(ctx, func(tx *sql.Tx) error {
		return update(ctx, tx, collection, id, patch)
	})
}

func (g *Gateway) Delete(ctx context.Context, collection, id string) error {
	_, err := g.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (g *Gateway) CommitAtomic(ctx context.Context, ops []store.Op) error {
	return g.inTx(ctx, func(tx *sql.Tx) error {
		for _, op := range ops {
			var err error
			switch op.Kind {
			case store.OpPut:
				err = put(ctx, tx, op.Collection, op.ID, op.Record)
			case store.OpUpdate:
				err = update(ctx, tx, op.Collection, op.ID, op.Record)
			case store.OpDelete:
				_, err = tx.ExecContext(ctx,
					`DELETE FROM documents WHERE collection = ? AND id = ?`,
					op.Collection, op.ID)
			default:
				err = fmt.Errorf("unknown op kind %d", op.Kind)
			}
			if err != nil {
				return fmt.Errorf("atomic batch aborted at %s/%s: %w", op.Collection, op.ID, err)
			}
		}
		return nil
	})
}

func (g *Gateway) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func put(ctx context.Context, tx *sql.Tx, collection, id string, rec store.Record) error {
	owner, _ := rec[store.OwnerField].(string)
	if owner == "" {
		return store.ErrMissingOwner
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (collection, id, owner_id, body, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (collection, id) DO UPDATE SET
			owner_id = excluded.owner_id,
			body = excluded.body,
			updated_at = CURRENT_TIMESTAMP`,
		collection, id, owner, body)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

func update(ctx context.Context, tx *sql.Tx, collection, id string, patch store.Record) error {
	var body []byte
	err := tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s/%s for update: %w", collection, id, err)
	}

	var rec store.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return fmt.Errorf("decode document %s/%s: %w", collection, id, err)
	}
	for k, v := range patch {
		rec[k] = v
	}
	return put(ctx, tx, collection, id, rec)
}
