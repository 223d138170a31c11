// Package repokit holds the pieces every SQL repository shares: the query
// seams, transaction scoping, schema setup and readiness checks
package repokit

import (
	"context"
	"fmt"

	"seedsearch/internal/platform/store"
)

type (
	Queryer  = store.RowQuerier
	TxRunner = store.TxRunner
	Row      = store.Row
)

// WithTx scopes fn to one transaction on db
func WithTx(ctx context.Context, db TxRunner, fn func(q Queryer) error) error {
	return db.Tx(ctx, fn)
}

// Migrate runs idempotent DDL in a single transaction; the failing statement
// is reported by position
func Migrate(ctx context.Context, db TxRunner, stmts ...string) error {
	return db.Tx(ctx, func(q Queryer) error {
		for i, s := range stmts {
			if _, err := q.Exec(ctx, s); err != nil {
				return fmt.Errorf("schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}
