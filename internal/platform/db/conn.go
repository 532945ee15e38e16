package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queryer is the subset of pgx operations repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same repository code runs
// inside and outside transactions.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type connKey struct{}

// WithQueryer returns a context carrying q. Repositories pick it up via
// QueryerFromContext so that work started inside a transaction stays in it.
func WithQueryer(ctx context.Context, q Queryer) context.Context {
	return context.WithValue(ctx, connKey{}, q)
}

// QueryerFromContext returns the Queryer stored on the context, or nil.
func QueryerFromContext(ctx context.Context) Queryer {
	q, _ := ctx.Value(connKey{}).(Queryer)
	return q
}

// InTx runs fn inside a transaction. The transaction is stored on the
// context passed to fn, so repository calls made through it join the
// transaction automatically. Commit on nil return, rollback otherwise.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(WithQueryer(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
