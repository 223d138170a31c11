// Package sqlite provides an embedded SQLite client with optional query tracing
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Config configures the database handle
type Config struct {
	Path        string
	BusyTimeout time.Duration
	SlowMs      int
}

// DB is a sqlite handle with optional tracer
type DB struct {
	SQL    *sql.DB
	Tracer QueryTracer
	SlowMs int
}

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

var sqlOpen = sql.Open // seam

// Open creates parent directories, opens the database in WAL mode and applies pragmas
func Open(cfg Config, tracer QueryTracer) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: empty path")
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	memory := cfg.Path == MemoryPath
	if !memory {
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sqlOpen("sqlite3", DSN(cfg.Path, busy))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if memory {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	return &DB{SQL: db, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// DSN builds the go-sqlite3 connection string
func DSN(path string, busy time.Duration) string {
	q := url.Values{}
	q.Set("_busy_timeout", fmt.Sprint(busy.Milliseconds()))
	q.Set("_foreign_keys", "on")
	if path != MemoryPath {
		q.Set("_journal_mode", "WAL")
		q.Set("_synchronous", "NORMAL")
	}
	return "file:" + path + "?" + q.Encode()
}

// Ping verifies the handle can reach the database
func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.SQL == nil {
		return fmt.Errorf("sqlite: nil handle")
	}
	return d.SQL.PingContext(ctx)
}

// Close closes the handle
func (d *DB) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}
