package domain

import "context"

// Loader reads filter documents by name or path
type Loader interface {
	Load(ctx context.Context, name string) (*Filter, error)
	LoadPath(ctx context.Context, path string) (*Filter, error)
}

// Saver persists a filter document back to where it came from
type Saver interface {
	Save(ctx context.Context, f *Filter) error
}

// StorePort is the full filter storage surface
type StorePort interface {
	Loader
	Saver
	List(ctx context.Context) ([]Summary, error)
	Exists(path string) bool
}
