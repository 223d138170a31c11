// Package service runs searches: the per-search Instance state machine and
// the Manager registry that owns them
package service

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/platform/logger"
	fdom "seedsearch/internal/services/filters/domain"
	dom "seedsearch/internal/services/search/domain"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Config tunes worker counts and event delivery
type Config struct {
	Threads          int           // tracked searches; 0 = NumCPU
	QuickThreads     int           // quick searches; 0 = NumCPU-1, min 1
	EventBuffer      int           // per-instance event channel capacity
	ProgressEvery    int           // emit progress every N batches
	ProgressInterval time.Duration // or when this much time has passed
}

// DefaultConfig returns the defaults used when a field is zero
func DefaultConfig() Config {
	return Config{EventBuffer: 256, ProgressEvery: 64, ProgressInterval: 250 * time.Millisecond}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.QuickThreads <= 0 {
		c.QuickThreads = max(runtime.NumCPU()-1, 1)
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = d.EventBuffer
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = d.ProgressEvery
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = d.ProgressInterval
	}
	return c
}

// newID is swapped in tests
var newID = func() string { return uuid.NewString() }

// Manager owns the registry of tracked searches. It holds no global state;
// construct one per process and pass it to whoever needs it
type Manager struct {
	cfg     Config
	kernel  dom.Kernel
	metrics *metrics
	log     *logger.Logger

	mu       sync.RWMutex
	searches map[string]*Instance
	saver    dom.StateSaver
}

var (
	_ dom.QuickSearcher = (*Manager)(nil)
	_ dom.Reserver      = (*Manager)(nil)
)

// NewManager builds a Manager around a kernel. reg may be nil
func NewManager(k dom.Kernel, cfg Config, reg prometheus.Registerer) *Manager {
	return &Manager{
		cfg:      cfg.withDefaults(),
		kernel:   k,
		metrics:  newMetrics(reg),
		log:      logger.Named("search-manager"),
		searches: map[string]*Instance{},
	}
}

// SetStateSaver installs the store used by Stop(saveState=true)
func (m *Manager) SetStateSaver(s dom.StateSaver) {
	m.mu.Lock()
	m.saver = s
	m.mu.Unlock()
}

// SearchOption customises a tracked search
type SearchOption func(*instanceConfig)

// WithSearchID uses id instead of a generated one
func WithSearchID(id string) SearchOption {
	return func(c *instanceConfig) { c.id = id }
}

// WithConfigPath records the filter document path persisted on Stop(saveState)
func WithConfigPath(path string) SearchOption {
	return func(c *instanceConfig) { c.configPath = path }
}

// WithFilterName overrides the filter name used in logs and events
func WithFilterName(name string) SearchOption {
	return func(c *instanceConfig) { c.filterName = name }
}

// CreateSearch registers an Idle instance. A colliding id fails with DuplicateKey
func (m *Manager) CreateSearch(ctx context.Context, opts ...SearchOption) (*Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := instanceConfig{
		kernel:           m.kernel,
		saver:            m.saver,
		metrics:          m.metrics,
		threads:          m.cfg.Threads,
		eventBuffer:      m.cfg.EventBuffer,
		progressEvery:    m.cfg.ProgressEvery,
		progressInterval: m.cfg.ProgressInterval,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.id == "" {
		cfg.id = newID()
	}
	if _, ok := m.searches[cfg.id]; ok {
		return nil, perr.WithField(perr.DuplicateKeyf("search %s already exists", cfg.id), "SearchID")
	}

	inst := newInstance(ctx, cfg)
	m.searches[cfg.id] = inst
	m.log.Debug().Str("search_id", cfg.id).Msg("search registered")
	return inst, nil
}

// StartSearch validates c, registers a tracked instance and starts it. It
// returns as soon as the workers are launched; observe the instance's events
// for progress. Nothing is registered when validation fails
func (m *Manager) StartSearch(ctx context.Context, c dom.Criteria, f *fdom.Filter, opts ...SearchOption) (*Instance, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, perr.InvalidArgf("filter is required")
	}
	base := []SearchOption{WithFilterName(f.Name), WithConfigPath(f.Path)}
	inst, err := m.CreateSearch(ctx, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	if err := inst.Start(c, f); err != nil {
		m.mu.Lock()
		if m.searches[inst.id] == inst {
			delete(m.searches, inst.id)
		}
		m.mu.Unlock()
		inst.Stop(ctx, false)
		return nil, err
	}
	return inst, nil
}

// ReserveSearch registers an Idle instance bound to configPath and returns its
// id. The caller starts it later through GetSearch
func (m *Manager) ReserveSearch(ctx context.Context, configPath string) (string, error) {
	if configPath == "" {
		return "", perr.WithField(perr.InvalidArgf("config path is required"), "ConfigPath")
	}
	inst, err := m.CreateSearch(ctx, WithConfigPath(configPath), WithFilterName(fileBase(configPath)))
	if err != nil {
		return "", err
	}
	return inst.ID(), nil
}

// GetSearch returns the tracked instance for id
func (m *Manager) GetSearch(id string) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.searches[id]
	return inst, ok
}

// List returns the tracked instances ordered by id
func (m *Manager) List() []*Instance {
	m.mu.RLock()
	out := make([]*Instance, 0, len(m.searches))
	for _, s := range m.searches {
		out = append(out, s)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(a, b int) bool { return out[a].id < out[b].id })
	return out
}

// RemoveSearch stops the instance without saving state and then evicts it.
// The lock is held across both steps so no lookup sees a stopping instance
// that is about to disappear
func (m *Manager) RemoveSearch(ctx context.Context, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.searches[id]
	if !ok {
		return false
	}
	inst.Stop(ctx, false)
	inst.Detach()
	delete(m.searches, id)
	m.log.Debug().Str("search_id", id).Msg("search removed")
	return true
}

// RunQuickSearch runs an unregistered search to completion and returns the
// aggregate. Cancelling ctx stops it; that is reported as Cancelled, not as a
// failure
func (m *Manager) RunQuickSearch(ctx context.Context, c dom.Criteria, f *fdom.Filter) dom.QuickResult {
	began := time.Now()
	if f == nil {
		return dom.QuickResult{Err: perr.InvalidArgf("filter is required"), Elapsed: time.Since(began)}
	}
	inst := newInstance(ctx, instanceConfig{
		id:         "quick-" + newID(),
		filterName: f.Name,
		kernel:     m.kernel,
		metrics:    m.metrics,
		threads:    m.cfg.QuickThreads,
	})
	if err := inst.Start(c, f); err != nil {
		inst.Stop(ctx, false)
		return dom.QuickResult{Err: err, Elapsed: time.Since(began)}
	}

	stop := context.AfterFunc(ctx, func() { inst.Stop(context.WithoutCancel(ctx), false) })
	defer stop()

	out, _ := inst.Wait(context.WithoutCancel(ctx))
	res := dom.QuickResult{
		Count:     len(out.Results),
		Elapsed:   time.Since(began),
		Seeds:     out.Seeds(),
		Results:   out.Results,
		Err:       out.Err,
		Cancelled: out.State == dom.StateCancelled,
	}
	res.Success = out.State == dom.StateCompleted
	return res
}

// Shutdown stops every tracked search that is still running or paused. With
// saveState, only the most recently active one persists its resumable record
func (m *Manager) Shutdown(ctx context.Context, saveState bool) {
	live := make([]*Instance, 0)
	for _, s := range m.List() {
		if st := s.State(); st == dom.StateRunning || st == dom.StatePaused {
			live = append(live, s)
		}
	}
	var latest *Instance
	for _, s := range live {
		if latest == nil || s.LastActive().After(latest.LastActive()) {
			latest = s
		}
	}
	for _, s := range live {
		s.Stop(ctx, saveState && s == latest)
	}
	for _, s := range live {
		select {
		case <-s.Done():
		case <-ctx.Done():
			m.log.Warn().Err(ctx.Err()).Msg("shutdown interrupted")
			return
		}
	}
	if len(live) > 0 {
		m.log.Info().Int("stopped", len(live)).Bool("save_state", saveState).Msg("searches stopped")
	}
}

func fileBase(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
