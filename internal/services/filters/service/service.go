// Package service implements the filter document store with a change-aware cache
package service

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"seedsearch/internal/core/normalize"
	"seedsearch/internal/core/seedspace"
	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/platform/logger"
	"seedsearch/internal/platform/validate"
	dom "seedsearch/internal/services/filters/domain"
	frepo "seedsearch/internal/services/filters/repo"

	"github.com/fsnotify/fsnotify"
)

// Config controls where filters live and whether the directory is watched
type Config struct {
	Dir   string
	Watch bool
}

type entry struct {
	f   *dom.Filter
	mod time.Time
}

// Svc implements dom.StorePort
type Svc struct {
	repo frepo.Repo
	cfg  Config
	log  *logger.Logger

	mu    sync.RWMutex
	cache map[string]entry

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

var _ dom.StorePort = (*Svc)(nil)

// registerSeedTag installs the "seed" validation tag used by dom.Filter
var registerSeedTag = sync.OnceValue(func() error {
	return validate.RegisterValidation("seed", func(fl validate.FieldLevel) bool {
		_, err := seedspace.Index(fl.Field().String())
		return err == nil
	}, "{0} must be a valid seed")
})

// New constructs the store; with cfg.Watch the directory is created and watched
// so edits made outside the process invalidate cached documents
func New(r frepo.Repo, cfg Config) (*Svc, error) {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if err := registerSeedTag(); err != nil {
		return nil, err
	}
	s := &Svc{
		repo:  r,
		cfg:   cfg,
		log:   logger.Named("filters"),
		cache: map[string]entry{},
	}
	if cfg.Watch {
		if err := s.startWatch(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dir returns the filter directory
func (s *Svc) Dir() string { return s.cfg.Dir }

// Load resolves name to a document under Dir (trying each known extension) or
// treats it as a path when it carries an extension or a separator
func (s *Svc) Load(ctx context.Context, name string) (*dom.Filter, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return s.LoadPath(ctx, path)
}

// LoadPath reads the document at path, serving from cache when it is current
func (s *Svc) LoadPath(ctx context.Context, path string) (*dom.Filter, error) {
	key := cacheKey(path)

	s.mu.RLock()
	e, ok := s.cache[key]
	s.mu.RUnlock()

	if ok {
		if s.watcher != nil {
			return e.f.Clone(), nil
		}
		if st, err := s.repo.Stat(path); err == nil && st.ModTime().Equal(e.mod) {
			return e.f.Clone(), nil
		}
	}

	f, st, err := s.repo.Read(ctx, path)
	if err != nil {
		s.invalidate(key)
		return nil, err
	}
	s.mu.Lock()
	s.cache[key] = entry{f: f, mod: st.ModTime()}
	s.mu.Unlock()
	return f.Clone(), nil
}

// Save validates f and writes it back to f.Path, or to a file named after the
// filter under Dir when f has never been saved
func (s *Svc) Save(ctx context.Context, f *dom.Filter) error {
	if f == nil {
		return perr.InvalidArgf("nil filter")
	}
	f.Name = normalize.Name(f.Name)
	if err := validate.Struct(f); err != nil {
		return perr.WithOp(err, "filters.save")
	}
	path := f.Path
	if path == "" {
		path = filepath.Join(s.cfg.Dir, FileName(f.Name))
	}
	if err := s.repo.Write(ctx, path, f); err != nil {
		return perr.WithOp(err, "filters.save")
	}
	f.Path = path

	key := cacheKey(path)
	var mod time.Time
	if st, err := s.repo.Stat(path); err == nil {
		mod = st.ModTime()
	}
	s.mu.Lock()
	s.cache[key] = entry{f: f.Clone(), mod: mod}
	s.mu.Unlock()

	s.log.Debug().Str("filter", f.Name).Str("path", path).Msg("filter saved")
	return nil
}

// List summarizes every readable document under Dir ordered by name;
// unreadable ones are logged and skipped
func (s *Svc) List(ctx context.Context) ([]dom.Summary, error) {
	paths, err := s.repo.List(ctx, s.cfg.Dir)
	if err != nil {
		return nil, err
	}
	out := make([]dom.Summary, 0, len(paths))
	for _, p := range paths {
		f, err := s.LoadPath(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.Warn().Err(err).Str("path", p).Msg("skipping unreadable filter")
			continue
		}
		sum := dom.Summary{Name: f.Name, Path: p, Author: f.Author, VerifiedSeed: f.VerifiedSeed}
		if st, err := s.repo.Stat(p); err == nil {
			sum.ModTime = st.ModTime()
		}
		out = append(out, sum)
	}
	sort.SliceStable(out, func(i, j int) bool { return normalize.Key(out[i].Name) < normalize.Key(out[j].Name) })
	return out, nil
}

// Exists reports whether path names an existing file
func (s *Svc) Exists(path string) bool {
	if path == "" {
		return false
	}
	st, err := s.repo.Stat(path)
	return err == nil && !st.IsDir()
}

// Close stops the directory watcher, if any
func (s *Svc) Close(_ context.Context) error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.wg.Wait()
	return err
}

func (s *Svc) resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", perr.WithField(perr.InvalidArgf("filter name is required"), "name")
	}
	if _, ok := dom.FormatOf(name); ok || strings.ContainsRune(name, filepath.Separator) {
		if filepath.IsAbs(name) || s.Exists(name) {
			return name, nil
		}
		return filepath.Join(s.cfg.Dir, name), nil
	}
	base := FileName(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, ext := range dom.Extensions {
		p := filepath.Join(s.cfg.Dir, base+ext)
		if s.Exists(p) {
			return p, nil
		}
	}
	return "", perr.NotFoundf("filter %q not found in %s", name, s.cfg.Dir)
}

func (s *Svc) invalidate(key string) {
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()
}

// FileName maps a filter name to a safe JSON file name
func FileName(name string) string {
	stem := normalize.Stem(name)
	if stem == "" {
		return "filter.json"
	}
	return stem + ".json"
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
