package repo

import (
	"context"
	"testing"
	"time"

	"seedsearch/internal/modkit/repokit"
	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/platform/logger"
	"seedsearch/internal/platform/store"
	"seedsearch/internal/services/profile/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) repokit.TxRunner {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, store.Config{SQLite: store.SQLiteConfig{Enabled: true, Path: ":memory:"}}, store.WithLogger(logger.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })
	require.NoError(t, repokit.Migrate(ctx, s.DB, Schema...))
	require.NoError(t, repokit.Migrate(ctx, s.DB, Schema...), "schema is idempotent")
	return s.DB
}

func TestRepo_PutGetClear(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	r := NewSQLite().Bind(db)

	_, err := r.Get(ctx)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound), "got %v", err)

	at := time.Date(2026, 5, 4, 3, 2, 1, 123456789, time.FixedZone("X", 3600))
	require.NoError(t, r.Put(ctx, domain.ResumableState{ConfigPath: "/f/a.json", LastActiveTime: at}))
	require.NoError(t, r.Put(ctx, domain.ResumableState{ConfigPath: "/f/b.json", LastActiveTime: at}), "put replaces")

	got, err := r.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/f/b.json", got.ConfigPath)
	assert.True(t, got.LastActiveTime.Equal(at))

	n, err := store.Scalar[int](ctx, db, `SELECT COUNT(*) FROM search_state`)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, r.Clear(ctx))
	require.NoError(t, r.Clear(ctx))
	_, err = r.Get(ctx)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
}

func TestRepo_CorruptRow(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	_, err := db.Exec(ctx, `INSERT INTO search_state (id, config_path, last_active) VALUES (1, '/f/a.json', 'yesterday')`)
	require.NoError(t, err)

	_, err = NewSQLite().Bind(db).Get(ctx)
	assert.True(t, perr.IsCode(err, perr.ErrorCodePersistence), "got %v", err)

	_, err = db.Exec(ctx, `UPDATE search_state SET config_path = '', last_active = ?`, time.Now().UTC().Format(time.RFC3339Nano))
	require.NoError(t, err)
	_, err = NewSQLite().Bind(db).Get(ctx)
	assert.True(t, perr.IsCode(err, perr.ErrorCodePersistence))
}

func TestRepo_SingleRowConstraint(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	_, err := db.Exec(ctx, `INSERT INTO search_state (id, config_path, last_active) VALUES (2, 'x', 'y')`)
	require.Error(t, err)
	code, ok := perr.DBErrorCode(err)
	require.True(t, ok)
	assert.Equal(t, perr.ErrorCodeValidation, code)
}
