// Package module wires the filter store and exposes its ports
package module

import (
	"context"

	"seedsearch/internal/modkit"
	frepo "seedsearch/internal/services/filters/repo"
	"seedsearch/internal/services/filters/service"
)

// Name is the registry key for this module
const Name = "filters"

// Module defines the filters module
type Module struct {
	deps  modkit.Deps
	svc   *service.Svc
	ports Ports
}

var _ modkit.Closer = (*Module)(nil)

// New constructs the filters module; non-zero overrides win over config
func New(deps modkit.Deps, overrides Options) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if overrides.Dir != "" {
		opts.Dir = overrides.Dir
		opts.Watch = overrides.Watch
	}

	svc, err := service.New(frepo.NewFiles(), service.Config{Dir: opts.Dir, Watch: opts.Watch})
	if err != nil {
		return nil, err
	}

	m := &Module{deps: deps, svc: svc}
	m.ports = Ports{Store: svc}
	if deps.Registry != nil {
		deps.Registry.RegisterModule(m)
	}
	return m, nil
}

// Ports returns the module ports (Store)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return Name }

// Close stops the directory watcher
func (m *Module) Close(ctx context.Context) error { return m.svc.Close(ctx) }
