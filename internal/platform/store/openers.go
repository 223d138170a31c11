package store

import (
	"context"
	"fmt"
	"time"

	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/platform/logger"
	"seedsearch/internal/platform/store/sqlite"
)

// openSQLite opens the database file and wraps it with our sql adapter
func openSQLite(ctx context.Context, cfg SQLiteConfig, log logger.Logger) (TxRunner, error) {
	var tracer sqlite.QueryTracer
	if cfg.LogSQL {
		tracer = sqlite.Tracer(log)
	}

	db, err := sqlite.Open(sqlite.Config{
		Path:        cfg.Path,
		BusyTimeout: cfg.BusyTimeout,
		SlowMs:      cfg.SlowQueryMs,
	}, tracer)
	if err != nil {
		return nil, err
	}

	// another process may hold the write lock while it checkpoints the WAL
	attempts := cfg.OpenRetries
	if attempts <= 0 {
		attempts = 5
	}
	const (
		backoffStart   = 50 * time.Millisecond
		backoffCeiling = time.Second
	)

	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		lastErr = db.Ping(ctx)
		if lastErr == nil {
			return newSQLAdapter(db), nil
		}
		if !perr.Retryable(lastErr) || ctx.Err() != nil {
			break
		}
		time.Sleep(backoff)
		backoff = min(backoff*2, backoffCeiling)
	}

	_ = db.Close()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, perr.FromSQLite(fmt.Errorf("sqlite ping failed after %d attempts: %w", attempts, lastErr), "open sqlite")
}
