package domain

import (
	"context"
	"time"

	fdom "seedsearch/internal/services/filters/domain"
)

// Kernel evaluates one seed against a parsed filter. Implementations must be
// stateless and safe for concurrent use
type Kernel interface {
	Evaluate(seed string, f *fdom.Filter) (Evaluation, error)
}

// KernelFunc adapts a function to Kernel
type KernelFunc func(seed string, f *fdom.Filter) (Evaluation, error)

// Evaluate calls fn
func (fn KernelFunc) Evaluate(seed string, f *fdom.Filter) (Evaluation, error) { return fn(seed, f) }

// StateSaver persists the resumable-search record
type StateSaver interface {
	SaveResumable(ctx context.Context, configPath string, lastActive time.Time) error
}

// QuickSearcher runs bounded, unregistered searches
type QuickSearcher interface {
	RunQuickSearch(ctx context.Context, c Criteria, f *fdom.Filter) QuickResult
}

// Reserver registers an idle search bound to a filter path and returns its id
type Reserver interface {
	ReserveSearch(ctx context.Context, configPath string) (string, error)
}
