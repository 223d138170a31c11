// Package module wires resumable-search persistence into the search manager
package module

import (
	"context"

	"seedsearch/internal/modkit"
	mod "seedsearch/internal/modkit/module"
	perr "seedsearch/internal/platform/errors"
	fmodule "seedsearch/internal/services/filters/module"
	prepo "seedsearch/internal/services/profile/repo"
	"seedsearch/internal/services/profile/service"
	smodule "seedsearch/internal/services/search/module"
)

// Name is the registry key for this module
const Name = "profile"

// Module defines the profile module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the profile module. It needs deps.DB and the filters
// module; when the search module is registered its manager saves through
// this module on Stop(saveState)
func New(ctx context.Context, deps modkit.Deps, overrides Options) (*Module, error) {
	if deps.DB == nil {
		return nil, perr.Unavailablef("profile module needs a database (SERVICE_SQLITE_ENABLED)")
	}
	if deps.Registry == nil {
		return nil, perr.InvalidArgf("profile module needs a registry")
	}
	filters, ok := mod.PortsAs[fmodule.Ports](deps.Registry, fmodule.Name)
	if !ok {
		return nil, perr.NotFoundf("module %q not registered", fmodule.Name)
	}

	opts := FromConfig(deps.Cfg)
	if overrides.MaxAge != 0 {
		opts.MaxAge = overrides.MaxAge
	}
	if overrides.Retries != 0 {
		opts.Retries = overrides.Retries
	}

	p, err := service.New(ctx, deps.DB, prepo.NewSQLite(), service.Config{
		MaxAge:  opts.MaxAge,
		Retries: opts.Retries,
		Exists:  filters.Store.Exists,
	})
	if err != nil {
		return nil, err
	}
	if search, ok := mod.PortsAs[smodule.Ports](deps.Registry, smodule.Name); ok {
		search.Manager.SetStateSaver(p)
	}

	m := &Module{deps: deps, ports: Ports{State: p, Persistence: p}}
	deps.Registry.RegisterModule(m)
	return m, nil
}

// Ports returns the module ports (State, Persistence)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return Name }
