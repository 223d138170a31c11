package store

import (
	"time"

	"seedsearch/internal/platform/logger"
)

// Config selects which backends Open brings up
type Config struct {
	SQLite SQLiteConfig
}

// SQLiteConfig describes the profile database
type SQLiteConfig struct {
	Enabled     bool
	Path        string // file path or ":memory:"
	LogSQL      bool
	SlowQueryMs int

	BusyTimeout time.Duration // 0 = 5s
	OpenRetries int           // 0 = 5
}

// Option adjusts a Store before its backends open
type Option func(*Store) error

// WithLogger routes backend logs (SQL tracing included) to log
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}
