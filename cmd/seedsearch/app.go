package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"seedsearch/internal/adapters/kernel/glob"
	"seedsearch/internal/modkit"
	"seedsearch/internal/modkit/module"
	"seedsearch/internal/modkit/repokit"
	"seedsearch/internal/platform/config"
	"seedsearch/internal/platform/logger"
	"seedsearch/internal/platform/store"

	fmodule "seedsearch/internal/services/filters/module"
	pmodule "seedsearch/internal/services/profile/module"
	smodule "seedsearch/internal/services/search/module"
	vmodule "seedsearch/internal/services/validation/module"

	"github.com/prometheus/client_golang/prometheus"
)

// app is the wired module graph for one command invocation
type app struct {
	log     *logger.Logger
	st      *store.Store
	metrics *prometheus.Registry

	filters    fmodule.Ports
	search     smodule.Ports
	validation vmodule.Ports
	profile    *pmodule.Ports // nil when the profile database is disabled

	closers []modkit.Closer
}

// openApp loads config and builds modules in dependency order:
// filters, search, validation, profile
func openApp(ctx context.Context, o *rootOptions) (*app, error) {
	if err := config.Load(o.envFiles...); err != nil {
		return nil, err
	}
	lo := logger.FromEnv()
	if o.verbose {
		lo.Level = "debug"
	}
	logger.Init(lo)
	l := logger.Get()

	root := config.New()
	sq := root.Prefix("SERVICE_SQLITE_")
	sqlCfg := store.SQLiteConfig{
		Enabled:     sq.MayBool("ENABLED", true),
		Path:        sq.MayString("PATH", "./data/profile.db"),
		LogSQL:      sq.MayBool("LOG_SQL", false),
		SlowQueryMs: sq.MayInt("SLOW_MS", 200),
		BusyTimeout: sq.MayDuration("BUSY_TIMEOUT", 5*time.Second),
	}
	if sqlCfg.Enabled && sqlCfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(sqlCfg.Path), 0o755); err != nil {
			return nil, err
		}
	}
	st, err := store.Open(ctx, store.Config{SQLite: sqlCfg}, store.WithLogger(*l))
	if err != nil {
		return nil, err
	}

	a := &app{log: l, st: st, metrics: prometheus.NewRegistry()}
	if err := repokit.Ready(ctx, "profile store", st); err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	reg := module.NewRegistry()
	deps := modkit.Deps{
		Log:      *l,
		Cfg:      root,
		DB:       st.DB,
		Metrics:  a.metrics,
		Registry: reg,
	}

	fail := func(err error) (*app, error) {
		_ = a.Close(context.Background())
		return nil, err
	}

	fm, err := fmodule.New(deps, fmodule.Options{Dir: o.filtersDir})
	if err != nil {
		return fail(err)
	}
	a.closers = append(a.closers, fm)

	sm, err := smodule.New(deps, smodule.Options{Kernel: glob.New()})
	if err != nil {
		return fail(err)
	}
	a.closers = append(a.closers, sm)

	if _, err := vmodule.New(deps, vmodule.Options{}); err != nil {
		return fail(err)
	}

	if st.DB != nil {
		if _, err := pmodule.New(ctx, deps, pmodule.Options{}); err != nil {
			return fail(err)
		}
		p := module.MustPortsAs[pmodule.Ports](reg, pmodule.Name)
		a.profile = &p
	} else {
		l.Info().Msg("profile database disabled; searches cannot be resumed")
	}

	a.filters = module.MustPortsAs[fmodule.Ports](reg, fmodule.Name)
	a.search = module.MustPortsAs[smodule.Ports](reg, smodule.Name)
	a.validation = module.MustPortsAs[vmodule.Ports](reg, vmodule.Name)
	return a, nil
}

// Close shuts modules down in reverse build order, then the store
func (a *app) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := a.st.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
