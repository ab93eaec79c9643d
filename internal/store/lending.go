package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
)

// Tx exposes the store to the lending engine over one connection or
// transaction.
type Tx struct {
	DB DBTX
}

var _ lending.Tx = Tx{}

func (t Tx) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	return GetItem(ctx, t.DB, id)
}

func (t Tx) SetItemStatus(ctx context.Context, id int64, from, to model.ItemStatus) error {
	return SetItemStatus(ctx, t.DB, id, from, to)
}

func (t Tx) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	return GetRequest(ctx, t.DB, id)
}

func (t Tx) SaveRequest(ctx context.Context, r *model.Request) error {
	return SaveRequest(ctx, t.DB, r)
}

func (t Tx) ListRequestsByParty(ctx context.Context, userID int64, party lending.Party) ([]model.Request, error) {
	return ListRequestsByParty(ctx, t.DB, userID, party)
}

func (t Tx) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return GetUser(ctx, t.DB, id)
}

// TxRunner runs lending units of work in SQLite transactions.
type TxRunner struct {
	DB *sql.DB
}

// InTx begins a transaction, runs fn and commits if fn succeeds.
func (r TxRunner) InTx(ctx context.Context, fn func(tx lending.Tx) error) error {
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		return fn(Tx{DB: tx})
	})
}

// View runs fn directly on the pool. In WAL mode readers see the last
// committed state and never wait for a writer.
func (r TxRunner) View(ctx context.Context, fn func(tx lending.Tx) error) error {
	return fn(Tx{DB: r.DB})
}

// WithTx runs fn in a transaction, rolling back if fn fails.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
