// Package service runs progressive filter validation: a table of quick
// searches over widening ranges, stopping at the first match
package service

import (
	"context"
	"sync"
	"time"

	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/platform/logger"
	fdom "seedsearch/internal/services/filters/domain"
	sdom "seedsearch/internal/services/search/domain"
	dom "seedsearch/internal/services/validation/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Config controls the escalation
type Config struct {
	Phases              []dom.Phase // nil = DefaultPhases
	BatchSize           int         // 0 = DefaultBatchSize
	PermissiveThreshold int         // 0 = DefaultPermissiveThreshold
}

// Controller validates filters. One controller may serve many calls; the
// status line reflects the most recent run
type Controller struct {
	quick  sdom.QuickSearcher
	saver  fdom.Saver
	cfg    Config
	log    *logger.Logger
	p      *message.Printer
	phaseT *prometheus.HistogramVec

	mu       sync.RWMutex
	status   string
	onStatus func(string)
}

// New validates cfg and builds a Controller. reg may be nil
func New(q sdom.QuickSearcher, s fdom.Saver, cfg Config, reg prometheus.Registerer) (*Controller, error) {
	if cfg.Phases == nil {
		cfg.Phases = dom.DefaultPhases()
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = dom.DefaultBatchSize
	}
	if cfg.PermissiveThreshold <= 0 {
		cfg.PermissiveThreshold = dom.DefaultPermissiveThreshold
	}
	if err := dom.CheckPhases(cfg.Phases, cfg.BatchSize); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Controller{
		quick: q,
		saver: s,
		cfg:   cfg,
		log:   logger.Named("validation"),
		p:     message.NewPrinter(language.English),
		phaseT: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "seedsearch",
			Name:      "validation_phase_seconds",
			Help:      "Wall time of each validation phase",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"phase"}),
	}, nil
}

// OnStatus registers a callback invoked synchronously with every status
// change, before the phase it announces starts
func (c *Controller) OnStatus(fn func(string)) {
	c.mu.Lock()
	c.onStatus = fn
	c.mu.Unlock()
}

// Status returns the current human-readable status line
func (c *Controller) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Controller) setStatus(s string) {
	c.mu.Lock()
	c.status = s
	fn := c.onStatus
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// Validate runs the phases in order until one finds a match.
//
// Phase errors abort the run and are returned. Cancelling ctx is soft: the
// phase in flight finishes but its result is discarded and no later phase
// starts. A seed found after the probe phase is saved to the filter document
// and set on f. A failure to save it is returned alongside the report, which
// still carries the seed
func (c *Controller) Validate(ctx context.Context, f *fdom.Filter) (dom.Report, error) {
	if f == nil {
		return dom.Report{Outcome: dom.OutcomeFailed}, perr.InvalidArgf("filter is required")
	}
	l := c.log.With().Str("filter", f.Name).Logger()
	began := time.Now()
	rep := dom.Report{}

	for _, ph := range c.cfg.Phases {
		if err := ctx.Err(); err != nil {
			return c.cancelled(rep, began), perr.Wrap(err, perr.ErrorCodeCancelled, "validation cancelled")
		}

		crit := ph.Criteria(c.cfg.BatchSize, f)
		c.setStatus(c.p.Sprintf("Phase %s: searching %d seeds in batches %d to %d",
			ph.Name, crit.Seeds(), ph.StartBatch, ph.EndBatch))
		l.Debug().Str("phase", ph.Name).Uint64("seeds", crit.Seeds()).Msg("phase started")

		res := c.quick.RunQuickSearch(context.WithoutCancel(ctx), crit, f)
		c.phaseT.WithLabelValues(ph.Name).Observe(res.Elapsed.Seconds())
		rep.Phases = append(rep.Phases, dom.PhaseResult{Phase: ph.Name, Count: res.Count, Elapsed: res.Elapsed})

		if ctx.Err() != nil {
			l.Info().Str("phase", ph.Name).Msg("validation cancelled; phase result discarded")
			return c.cancelled(rep, began), perr.Wrap(ctx.Err(), perr.ErrorCodeCancelled, "validation cancelled")
		}
		if !res.Success {
			err := res.Err
			if err == nil {
				err = perr.Internalf("phase %s did not complete", ph.Name)
			}
			rep.Outcome = dom.OutcomeFailed
			rep.Phase = ph.Name
			rep.Elapsed = time.Since(began)
			rep.Message = c.p.Sprintf("Phase %s failed: %v", ph.Name, err)
			c.setStatus(rep.Message)
			l.Error().Err(err).Str("phase", ph.Name).Msg("validation failed")
			return rep, perr.WithOp(err, "validation phase "+ph.Name)
		}
		if res.Count == 0 {
			continue
		}

		rep.Outcome = dom.OutcomeVerified
		rep.Phase = ph.Name
		rep.Count = res.Count
		rep.Seeds = res.Seeds
		rep.VerifiedSeed = res.Seeds[0]
		rep.Elapsed = time.Since(began)

		if ph.Probe {
			if res.Count > c.cfg.PermissiveThreshold {
				rep.Warning = dom.WarningTooPermissive
				rep.Message = c.p.Sprintf("Filter matched %d of %d seeds in phase %s and may be too permissive",
					res.Count, crit.Seeds(), ph.Name)
			} else {
				rep.Message = c.p.Sprintf("Filter verified: %d matches in phase %s", res.Count, ph.Name)
			}
			c.setStatus(rep.Message)
			l.Info().Str("phase", ph.Name).Int("count", res.Count).Str("warning", rep.Warning.String()).Msg("filter verified")
			return rep, nil
		}

		rep.Message = c.p.Sprintf("Filter verified in phase %s: seed %s", ph.Name, rep.VerifiedSeed)
		if err := c.saveVerified(ctx, f, rep.VerifiedSeed); err != nil {
			rep.Message = c.p.Sprintf("Found seed %s in phase %s but could not save it: %v", rep.VerifiedSeed, ph.Name, err)
			c.setStatus(rep.Message)
			l.Error().Err(err).Str("seed", rep.VerifiedSeed).Msg("save verified seed failed")
			return rep, err
		}
		rep.Saved = true
		c.setStatus(rep.Message)
		l.Info().Str("phase", ph.Name).Str("seed", rep.VerifiedSeed).Msg("filter verified")
		return rep, nil
	}

	rep.Outcome = dom.OutcomeNoSeeds
	rep.Warning = dom.WarningTooRestrictive
	rep.Elapsed = time.Since(began)
	rep.Message = c.p.Sprintf("No seeds found after %v; the filter may be too restrictive", rep.Elapsed.Round(time.Millisecond))
	c.setStatus(rep.Message)
	l.Warn().Dur("elapsed", rep.Elapsed).Msg("no seeds found")
	return rep, nil
}

func (c *Controller) cancelled(rep dom.Report, began time.Time) dom.Report {
	rep.Outcome = dom.OutcomeCancelled
	rep.Elapsed = time.Since(began)
	rep.Message = "Validation cancelled"
	c.setStatus(rep.Message)
	return rep
}

func (c *Controller) saveVerified(ctx context.Context, f *fdom.Filter, seed string) error {
	if c.saver == nil {
		return perr.Persistencef("no filter store to save verified seed %s", seed)
	}
	doc := f.Clone()
	doc.VerifiedSeed = seed
	if err := c.saver.Save(context.WithoutCancel(ctx), doc); err != nil {
		return perr.Wrapf(err, perr.ErrorCodePersistence, "save verified seed %s", seed)
	}
	f.VerifiedSeed = seed
	return nil
}
