// Package service persists and restores the resumable search
package service

import (
	"context"
	"time"

	"seedsearch/internal/modkit/repokit"
	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/platform/logger"
	"seedsearch/internal/services/profile/domain"
	prepo "seedsearch/internal/services/profile/repo"
	sdom "seedsearch/internal/services/search/domain"
)

// Config controls restore behaviour
type Config struct {
	MaxAge  time.Duration          // 0 = domain.DefaultMaxAge
	Exists  func(path string) bool // reports whether a filter document is still on disk
	Retries int                    // attempts for busy database writes; 0 = 3
}

// Persistence owns the resumable record. It implements the search StateSaver
// and the profile StatePort
type Persistence struct {
	db    repokit.TxRunner
	repo  repokit.Binder[prepo.Storage]
	cfg   Config
	log   *logger.Logger
	now   func() time.Time
	pause func(time.Duration)
}

var (
	_ sdom.StateSaver  = (*Persistence)(nil)
	_ domain.StatePort = (*Persistence)(nil)
)

// New builds the service and applies the schema
func New(ctx context.Context, db repokit.TxRunner, r repokit.Binder[prepo.Storage], cfg Config) (*Persistence, error) {
	if db == nil {
		return nil, perr.InvalidArgf("profile store needs a database")
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = domain.DefaultMaxAge
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.Exists == nil {
		return nil, perr.InvalidArgf("profile store needs an Exists check")
	}
	if err := repokit.Migrate(ctx, db, prepo.Schema...); err != nil {
		return nil, perr.FromSQLite(err, "migrate profile schema")
	}
	return &Persistence{
		db:    db,
		repo:  r,
		cfg:   cfg,
		log:   logger.Named("profile"),
		now:   time.Now,
		pause: time.Sleep,
	}, nil
}

// GetSearchState returns the stored record or nil when there is none
func (p *Persistence) GetSearchState(ctx context.Context) (*domain.ResumableState, error) {
	var st domain.ResumableState
	err := repokit.WithTx(ctx, p.db, func(q repokit.Queryer) error {
		var err error
		st, err = p.repo.Bind(q).Get(ctx)
		return err
	})
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveSearchState replaces the stored record
func (p *Persistence) SaveSearchState(ctx context.Context, st domain.ResumableState) error {
	if st.ConfigPath == "" {
		return perr.WithField(perr.Validationf("config path is required"), "ConfigPath")
	}
	if st.LastActiveTime.IsZero() {
		st.LastActiveTime = p.now()
	}
	return p.retry(ctx, "save search state", func(q repokit.Queryer) error {
		return p.repo.Bind(q).Put(ctx, st)
	})
}

// ClearSearchState removes the stored record
func (p *Persistence) ClearSearchState(ctx context.Context) error {
	return p.retry(ctx, "clear search state", func(q repokit.Queryer) error {
		return p.repo.Bind(q).Clear(ctx)
	})
}

// SaveResumable records configPath as the search to offer on next start
func (p *Persistence) SaveResumable(ctx context.Context, configPath string, lastActive time.Time) error {
	return p.SaveSearchState(ctx, domain.ResumableState{ConfigPath: configPath, LastActiveTime: lastActive})
}

// Restore loads the record and, when it is fresh and its filter still
// exists, reserves an idle search for it and calls onRestore. Stale, corrupt
// or dangling records are cleared and only logged. The record itself is kept
// until the restored search is started or replaced
func (p *Persistence) Restore(ctx context.Context, r sdom.Reserver, onRestore func(domain.Restored)) (*domain.Restored, error) {
	st, err := p.GetSearchState(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("resumable state unreadable; discarding")
		p.discard(ctx)
		return nil, nil
	}
	if st == nil {
		return nil, nil
	}

	l := p.log.With().Str("config_path", st.ConfigPath).Time("last_active", st.LastActiveTime).Logger()
	if st.Stale(p.now(), p.cfg.MaxAge) {
		l.Info().Dur("max_age", p.cfg.MaxAge).Msg("resumable state expired; discarding")
		p.discard(ctx)
		return nil, nil
	}
	if !p.cfg.Exists(st.ConfigPath) {
		l.Warn().Msg("resumable filter missing; discarding")
		p.discard(ctx)
		return nil, nil
	}

	id, err := r.ReserveSearch(ctx, st.ConfigPath)
	if err != nil {
		return nil, perr.WithOp(err, "profile.restore")
	}
	out := &domain.Restored{SearchID: id, State: *st}
	l.Info().Str("search_id", id).Msg("resumable search restored")
	if onRestore != nil {
		onRestore(*out)
	}
	return out, nil
}

func (p *Persistence) discard(ctx context.Context) {
	if err := p.ClearSearchState(ctx); err != nil {
		p.log.Warn().Err(err).Msg("clear resumable state failed")
	}
}

// retry runs fn in a transaction, retrying busy or locked databases with a
// short doubling backoff
func (p *Persistence) retry(ctx context.Context, what string, fn func(repokit.Queryer) error) error {
	backoff := 25 * time.Millisecond
	var err error
	for attempt := 1; attempt <= p.cfg.Retries; attempt++ {
		err = repokit.WithTx(ctx, p.db, fn)
		if err == nil || !perr.Retryable(err) || ctx.Err() != nil || attempt == p.cfg.Retries {
			break
		}
		p.log.Debug().Err(err).Int("attempt", attempt).Str("op", what).Msg("database busy; retrying")
		p.pause(backoff)
		backoff *= 2
	}
	if err != nil {
		return perr.WithOp(err, what)
	}
	return nil
}
