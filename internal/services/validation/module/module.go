// Package module wires the validation controller to the search and filter
// modules found in the registry
package module

import (
	"seedsearch/internal/modkit"
	mod "seedsearch/internal/modkit/module"
	perr "seedsearch/internal/platform/errors"
	fmodule "seedsearch/internal/services/filters/module"
	smodule "seedsearch/internal/services/search/module"
	"seedsearch/internal/services/validation/service"
)

// Name is the registry key for this module
const Name = "validation"

// Module defines the validation module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the validation module. The search and filters modules must
// already be registered
func New(deps modkit.Deps, overrides Options) (*Module, error) {
	if deps.Registry == nil {
		return nil, perr.InvalidArgf("validation module needs a registry")
	}
	search, ok := mod.PortsAs[smodule.Ports](deps.Registry, smodule.Name)
	if !ok {
		return nil, perr.NotFoundf("module %q not registered", smodule.Name)
	}
	filters, ok := mod.PortsAs[fmodule.Ports](deps.Registry, fmodule.Name)
	if !ok {
		return nil, perr.NotFoundf("module %q not registered", fmodule.Name)
	}

	opts := FromConfig(deps.Cfg)
	if overrides.BatchSize != 0 {
		opts.BatchSize = overrides.BatchSize
	}
	if overrides.PermissiveThreshold != 0 {
		opts.PermissiveThreshold = overrides.PermissiveThreshold
	}
	opts.Phases = overrides.Phases

	ctrl, err := service.New(search.Quick, filters.Store, service.Config{
		Phases:              opts.Phases,
		BatchSize:           opts.BatchSize,
		PermissiveThreshold: opts.PermissiveThreshold,
	}, deps.Registerer())
	if err != nil {
		return nil, err
	}

	m := &Module{deps: deps, ports: Ports{Controller: ctrl}}
	deps.Registry.RegisterModule(m)
	return m, nil
}

// Ports returns the module ports (Controller)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return Name }
