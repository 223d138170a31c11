package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/platform/store/sqlite"
)

// sqlAdapter wraps sqlite.DB and implements RowQuerier + TxRunner
// it also emits query trace events when a tracer is configured on sqlite.DB
type sqlAdapter struct {
	d *sqlite.DB
}

func newSQLAdapter(d *sqlite.DB) *sqlAdapter { return &sqlAdapter{d: d} }

func (a *sqlAdapter) Ping(ctx context.Context) error {
	if a == nil {
		return errors.New("sqlite: nil adapter")
	}
	var one int
	return a.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (a *sqlAdapter) Close() error { return a.d.Close() }

func (a *sqlAdapter) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	return execOn(ctx, a.d.SQL, a.tracer(), q, args)
}

func (a *sqlAdapter) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	return queryOn(ctx, a.d.SQL, a.tracer(), q, args)
}

func (a *sqlAdapter) QueryRow(ctx context.Context, q string, args ...any) Row {
	return queryRowOn(ctx, a.d.SQL, a.tracer(), q, args)
}

func (a *sqlAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.d.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(txQuerier{tx: tx, t: a.tracer()}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (a *sqlAdapter) tracer() emitter {
	return emitter{tracer: a.d.Tracer, slow: time.Duration(a.d.SlowMs) * time.Millisecond}
}

// txQuerier uses sql.Tx to satisfy RowQuerier inside a Tx
// it mirrors sqlAdapter emit behavior so queries inside transactions are also traced
type txQuerier struct {
	tx *sql.Tx
	t  emitter
}

func (x txQuerier) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	return execOn(ctx, x.tx, x.t, q, args)
}

func (x txQuerier) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	return queryOn(ctx, x.tx, x.t, q, args)
}

func (x txQuerier) QueryRow(ctx context.Context, q string, args ...any) Row {
	return queryRowOn(ctx, x.tx, x.t, q, args)
}

// conn is the database/sql surface shared by *sql.DB and *sql.Tx
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execOn(ctx context.Context, c conn, e emitter, q string, args []any) (CommandTag, error) {
	start := time.Now()
	res, err := c.ExecContext(ctx, q, args...)
	e.emit(ctx, q, args, start, err)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	return tag{n: n}, nil
}

func queryOn(ctx context.Context, c conn, e emitter, q string, args []any) (Rows, error) {
	start := time.Now()
	rs, err := c.QueryContext(ctx, q, args...)
	e.emit(ctx, q, args, start, err)
	if err != nil {
		return nil, err
	}
	return &rows{r: rs}, nil
}

func queryRowOn(ctx context.Context, c conn, e emitter, q string, args []any) Row {
	start := time.Now()
	r := c.QueryRowContext(ctx, q, args...)
	return row{
		r: r,
		after: func(scanErr error) {
			e.emit(ctx, q, args, start, scanErr)
		},
	}
}

// emitter reports finished statements to the tracer, if there is one
type emitter struct {
	tracer sqlite.QueryTracer
	slow   time.Duration
}

func (e emitter) emit(ctx context.Context, q string, args []any, start time.Time, err error) {
	if e.tracer == nil {
		return
	}
	took := time.Since(start)
	e.tracer.OnQuery(ctx, sqlite.QueryEvent{
		SQL:     q,
		Args:    args,
		Elapsed: took,
		Err:     err,
		Slow:    e.slow > 0 && took >= e.slow,
	})
}

// adapters for database/sql to our tiny Row/Rows/CommandTag

type row struct {
	r     *sql.Row
	after func(error)
}

func (x row) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return perr.Wrap(err, perr.ErrorCodeNotFound, "not found")
	}
	return err
}

type rows struct{ r *sql.Rows }

func (x *rows) Next() bool            { return x.r.Next() }
func (x *rows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x *rows) Err() error            { return x.r.Err() }
func (x *rows) Close()                { _ = x.r.Close() }
func (x *rows) Columns() []string {
	cols, _ := x.r.Columns()
	return cols
}

// tag reports rows affected the way database/sql exposes it
type tag struct{ n int64 }

func (t tag) String() string      { return fmt.Sprintf("ROWS %d", t.n) }
func (t tag) RowsAffected() int64 { return t.n }
