// Package module wires the search manager and exposes its ports
package module

import (
	"context"

	"seedsearch/internal/modkit"
	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/services/search/service"
)

// Name is the registry key for this module
const Name = "search"

// Module defines the search module
type Module struct {
	deps  modkit.Deps
	opts  Options
	mgr   *service.Manager
	ports Ports
}

var _ modkit.Closer = (*Module)(nil)

// New constructs the search module; non-zero overrides win over config
func New(deps modkit.Deps, overrides Options) (*Module, error) {
	opts := merge(FromConfig(deps.Cfg), overrides)
	if opts.Kernel == nil {
		return nil, perr.WithField(perr.InvalidArgf("search module needs a kernel"), "Kernel")
	}

	mgr := service.NewManager(opts.Kernel, service.Config{
		Threads:          opts.Threads,
		QuickThreads:     opts.QuickThreads,
		EventBuffer:      opts.EventBuffer,
		ProgressEvery:    opts.ProgressEvery,
		ProgressInterval: opts.ProgressInterval,
	}, deps.Registerer())

	m := &Module{deps: deps, opts: opts, mgr: mgr}
	m.ports = Ports{Manager: mgr, Quick: mgr, Reserver: mgr}
	if deps.Registry != nil {
		deps.Registry.RegisterModule(m)
	}
	return m, nil
}

func merge(base, o Options) Options {
	if o.Threads != 0 {
		base.Threads = o.Threads
	}
	if o.QuickThreads != 0 {
		base.QuickThreads = o.QuickThreads
	}
	if o.EventBuffer != 0 {
		base.EventBuffer = o.EventBuffer
	}
	if o.ProgressEvery != 0 {
		base.ProgressEvery = o.ProgressEvery
	}
	if o.ProgressInterval != 0 {
		base.ProgressInterval = o.ProgressInterval
	}
	if o.Kernel != nil {
		base.Kernel = o.Kernel
	}
	return base
}

// Ports returns the module ports (Manager, Quick, Reserver)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return Name }

// Manager returns the search manager
func (m *Module) Manager() *service.Manager { return m.mgr }

// Close stops live searches, saving the most recent one when configured
func (m *Module) Close(ctx context.Context) error {
	m.mgr.Shutdown(ctx, m.opts.SaveOnClose)
	return nil
}
