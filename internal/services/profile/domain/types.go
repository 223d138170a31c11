// Package domain defines the resumable-search record kept in the user profile
package domain

import (
	"context"
	"time"
)

// DefaultMaxAge is how long a resumable record stays valid
const DefaultMaxAge = 24 * time.Hour

// ResumableState points at the filter of the last search stopped with save
type ResumableState struct {
	ConfigPath     string    `json:"configPath"`
	LastActiveTime time.Time `json:"lastActiveTime"`
}

// Stale reports whether the record is older than maxAge at now
func (s ResumableState) Stale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(s.LastActiveTime) > maxAge
}

// StatePort reads and writes the single resumable record
type StatePort interface {
	GetSearchState(ctx context.Context) (*ResumableState, error)
	SaveSearchState(ctx context.Context, st ResumableState) error
	ClearSearchState(ctx context.Context) error
}

// Restored is handed to the restore callback
type Restored struct {
	SearchID string
	State    ResumableState
}
