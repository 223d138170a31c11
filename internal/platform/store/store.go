// Package store opens the embedded database behind the seams repositories use
package store

import (
	"context"
	"errors"
	"fmt"

	"seedsearch/internal/platform/logger"
)

// Row is one scanned result row
type Row interface {
	Scan(dest ...any) error
}

// Rows is a forward-only result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a write did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is what a repository needs to read and write
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also scope work to a transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Store holds the opened backends. DB stays nil when SQLite is disabled, so
// callers can run without a profile database
type Store struct {
	Log logger.Logger
	DB  TxRunner
}

// Open applies opts and brings up every backend enabled in cfg
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	if !cfg.SQLite.Enabled {
		return s, nil
	}
	db, err := openSQLite(ctx, cfg.SQLite, s.Log)
	if err != nil {
		return nil, err
	}
	s.DB = db
	return s, nil
}

// Guard pings the database when there is one
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	p, ok := s.DB.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

// Close releases the database; a nil or empty store is a no-op
func (s *Store) Close(context.Context) error {
	if s == nil {
		return nil
	}
	if c, ok := s.DB.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
