package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dang0801205/volunteerhub-sub000/internal/service"
)

// executor abstracts *sql.DB and *sql.Tx so the same query methods run
// against the pool and inside a transaction.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements service.StoreOps bound to either the pool or an open
// transaction.  The per-entity methods live in the *_repository.go files.
type queries struct{ q executor }

// Store implements service.Store on MySQL.  Plain calls run on the pool;
// Transact rebinds the same query set to a transaction.
type Store struct {
	queries
	db *sql.DB
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{queries: queries{q: db}, db: db}
}

// Transact executes fn against a single transaction.  The transaction is
// committed when fn returns nil and rolled back otherwise.
func (s *Store) Transact(ctx context.Context, fn func(ops service.StoreOps) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&queries{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// notFound maps sql.ErrNoRows onto the service-level sentinel.
func notFound(err error) error {
	if err == sql.ErrNoRows {
		return service.ErrNotFound
	}
	return err
}

// placeholders returns n comma-joined '?' markers for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
