// Package repo stores the resumable-search record in SQLite
package repo

import (
	"context"
	"time"

	"seedsearch/internal/modkit/repokit"
	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/platform/store"
	"seedsearch/internal/services/profile/domain"
)

// Schema creates the single-row table
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS search_state (
		id          INTEGER PRIMARY KEY CHECK (id = 1),
		config_path TEXT NOT NULL,
		last_active TEXT NOT NULL
	)`,
}

type sqlite struct{ q repokit.Queryer }

// NewSQLite constructs a new repo binder for SQLite
func NewSQLite() repokit.Binder[Storage] {
	return repokit.BindFunc[Storage](func(q repokit.Queryer) Storage { return &sqlite{q: q} })
}

// Storage defines the profile repository
type Storage interface {
	Get(ctx context.Context) (domain.ResumableState, error)
	Put(ctx context.Context, st domain.ResumableState) error
	Clear(ctx context.Context) error
}

// Get returns the record; NotFound when there is none and Persistence when
// the stored row cannot be read back
func (s *sqlite) Get(ctx context.Context) (domain.ResumableState, error) {
	scan := func(r repokit.Row) (domain.ResumableState, error) {
		var path, at string
		if err := r.Scan(&path, &at); err != nil {
			return domain.ResumableState{}, err
		}
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return domain.ResumableState{}, perr.Wrapf(err, perr.ErrorCodePersistence, "corrupt last_active %q", at)
		}
		if path == "" {
			return domain.ResumableState{}, perr.Persistencef("corrupt search state: empty config path")
		}
		return domain.ResumableState{ConfigPath: path, LastActiveTime: ts}, nil
	}
	st, err := store.One(ctx, s.q, scan, `SELECT config_path, last_active FROM search_state WHERE id = 1`)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) || perr.IsCode(err, perr.ErrorCodePersistence) {
			return domain.ResumableState{}, err
		}
		return domain.ResumableState{}, perr.FromSQLite(err, "read search state")
	}
	return st, nil
}

// Put replaces the record
func (s *sqlite) Put(ctx context.Context, st domain.ResumableState) error {
	err := store.ExecOne(ctx, s.q, `INSERT INTO search_state (id, config_path, last_active) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET config_path = excluded.config_path, last_active = excluded.last_active`,
		st.ConfigPath, st.LastActiveTime.UTC().Format(time.RFC3339Nano))
	return perr.FromSQLite(err, "write search state")
}

// Clear removes the record; clearing an empty table is not an error
func (s *sqlite) Clear(ctx context.Context) error {
	_, err := store.Exec(ctx, s.q, `DELETE FROM search_state`)
	return perr.FromSQLite(err, "clear search state")
}
