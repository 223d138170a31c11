package modkit

import (
	"seedsearch/internal/modkit/module"
	"seedsearch/internal/modkit/repokit"
	"seedsearch/internal/platform/config"
	"seedsearch/internal/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf

	// DB is the sqlite seam, nil when the profile store is disabled
	DB repokit.TxRunner

	// Metrics receives collectors; nil disables metrics
	Metrics prometheus.Registerer

	// Registry holds port sets published by modules built earlier in main
	Registry *module.Registry
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional stores
func (d Deps) ZeroOK() bool { return true }

// Registerer returns Metrics or a private registry nobody scrapes
func (d Deps) Registerer() prometheus.Registerer {
	if d.Metrics != nil {
		return d.Metrics
	}
	return prometheus.NewRegistry()
}
