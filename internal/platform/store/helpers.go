package store

import (
	"context"

	perr "seedsearch/internal/platform/errors"
)

// Exec runs a statement and hands back its command tag
func Exec(ctx context.Context, q RowQuerier, sql string, args ...any) (CommandTag, error) {
	return q.Exec(ctx, sql, args...)
}

// ExecOne runs a statement that must touch exactly one row
func ExecOne(ctx context.Context, q RowQuerier, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	switch {
	case err != nil:
		return err
	case tag.RowsAffected() != 1:
		return perr.Newf(perr.ErrorCodeDB, "%d rows affected, want 1", tag.RowsAffected())
	}
	return nil
}

// Scalar reads the first column of the first row
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	if err := q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// One maps the only row of a query. No row is ErrNotFound; a second row is a
// DB error
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var out, zero T
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return zero, err
	}
	defer rows.Close()

	seen := 0
	for rows.Next() {
		if seen++; seen > 1 {
			return zero, perr.Newf(perr.ErrorCodeDB, "query returned more than one row")
		}
		if out, err = scan(rows); err != nil {
			return zero, err
		}
	}
	if err := rows.Err(); err != nil {
		return zero, err
	}
	if seen == 0 {
		return zero, perr.ErrNotFound
	}
	return out, nil
}
