package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"seedsearch/internal/core/seedspace"
	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/platform/logger"
	fdom "seedsearch/internal/services/filters/domain"
	dom "seedsearch/internal/services/search/domain"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// instanceConfig is everything an Instance needs besides the criteria
type instanceConfig struct {
	id               string
	filterName       string
	configPath       string
	kernel           dom.Kernel
	saver            dom.StateSaver
	metrics          *metrics
	threads          int
	eventBuffer      int // 0 disables the event channel
	progressEvery    int
	progressInterval time.Duration
}

// Instance is one search over a batch range. Counters and results belong to
// the instance; callers only ever see copies
type Instance struct {
	id         string
	filterName string
	configPath string
	kernel     dom.Kernel
	saver      dom.StateSaver
	metrics    *metrics
	threads    int
	log        *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	state       atomic.Int32
	cursor      atomic.Uint64
	seeds       atomic.Uint64
	batchesDone atomic.Uint64
	halted      atomic.Bool
	haltCh      chan struct{} // closed when halted is set
	lastActive  atomic.Int64

	mu       sync.Mutex
	crit     dom.Criteria
	filter   *fdom.Filter
	results  []dom.Result
	errs     []error
	started  time.Time
	finished time.Time
	launched bool

	gateMu sync.Mutex
	resume chan struct{} // non-nil while paused

	events      chan dom.Event
	release     chan struct{}
	releaseOnce sync.Once
	progress    rate.Sometimes

	done       chan struct{}
	finishOnce sync.Once
	outcome    dom.Outcome
}

func newInstance(ctx context.Context, cfg instanceConfig) *Instance {
	base := logger.WithSearch(context.WithoutCancel(ctx), cfg.id, cfg.filterName)
	runCtx, cancel := context.WithCancel(base)
	l := logger.C(base).With().Str("component", "search").Logger()

	i := &Instance{
		id:         cfg.id,
		filterName: cfg.filterName,
		configPath: cfg.configPath,
		kernel:     cfg.kernel,
		saver:      cfg.saver,
		metrics:    cfg.metrics,
		threads:    cfg.threads,
		log:        &l,
		ctx:        runCtx,
		cancel:     cancel,
		release:    make(chan struct{}),
		haltCh:     make(chan struct{}),
		done:       make(chan struct{}),
		progress: rate.Sometimes{
			First:    1,
			Every:    cfg.progressEvery,
			Interval: cfg.progressInterval,
		},
	}
	if cfg.eventBuffer > 0 {
		i.events = make(chan dom.Event, cfg.eventBuffer)
	}
	if i.threads < 1 {
		i.threads = 1
	}
	i.touch()
	return i
}

// ID returns the search id
func (i *Instance) ID() string { return i.id }

// FilterName returns the name of the filter being searched
func (i *Instance) FilterName() string { return i.filterName }

// ConfigPath returns the filter document path persisted on Stop(saveState)
func (i *Instance) ConfigPath() string { return i.configPath }

// State returns the current lifecycle state
func (i *Instance) State() dom.State { return dom.State(i.state.Load()) }

// LastActive returns the last time the instance started, scanned or changed state
func (i *Instance) LastActive() time.Time { return time.Unix(0, i.lastActive.Load()) }

// Events returns the instance event channel, nil for quick searches. It is
// closed after the EventCompleted event
func (i *Instance) Events() <-chan dom.Event { return i.events }

// Done closes once the instance reaches a terminal state
func (i *Instance) Done() <-chan struct{} { return i.done }

// Criteria returns the criteria the instance was started with
func (i *Instance) Criteria() dom.Criteria {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.crit
}

// Results returns a copy of the recorded matches
func (i *Instance) Results() []dom.Result {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]dom.Result, len(i.results))
	copy(out, i.results)
	return out
}

// Progress returns a snapshot of the instance counters
func (i *Instance) Progress() dom.Progress {
	seeds := i.seeds.Load()
	batches := i.batchesDone.Load()

	i.mu.Lock()
	total := i.crit.Batches()
	found := len(i.results)
	var elapsed time.Duration
	switch {
	case i.started.IsZero():
	case !i.finished.IsZero():
		elapsed = i.finished.Sub(i.started)
	default:
		elapsed = time.Since(i.started)
	}
	i.mu.Unlock()

	p := dom.Progress{
		SeedsSearched: seeds,
		ResultsFound:  found,
		BatchesDone:   batches,
		TotalBatches:  total,
		Elapsed:       elapsed,
	}
	if total > 0 {
		p.PercentComplete = float64(batches) * 100 / float64(total)
	}
	return p
}

// Start validates c and launches the workers. An invalid criteria leaves the
// instance Idle with no workers started
func (i *Instance) Start(c dom.Criteria, f *fdom.Filter) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if f == nil {
		return perr.InvalidArgf("filter is required")
	}
	if i.kernel == nil {
		return perr.InvalidArgf("kernel is required")
	}

	i.mu.Lock()
	if !i.state.CompareAndSwap(int32(dom.StateIdle), int32(dom.StateRunning)) {
		i.mu.Unlock()
		return perr.Conflictf("cannot start search %s in state %s", i.id, i.State())
	}
	i.crit = c
	i.filter = f
	i.started = time.Now()
	i.launched = true
	i.mu.Unlock()
	i.touch()

	threads := i.threads
	if c.ThreadCount > 0 {
		threads = c.ThreadCount
	}
	if n := c.Batches(); n > 0 && uint64(threads) > n {
		threads = int(n)
	}

	i.metrics.active.Inc()
	i.log.Info().
		Int("batch_size", c.BatchSize).
		Uint64("start_batch", c.StartBatch).
		Uint64("end_batch", c.EndBatch).
		Int("threads", threads).
		Int("max_results", c.MaxResults).
		Msg("search started")
	i.send(dom.Event{Kind: dom.EventStarted, SearchID: i.id, Progress: i.Progress()}, true)

	go i.run(threads)
	return nil
}

// Pause parks the workers at their next batch boundary
func (i *Instance) Pause() error {
	i.gateMu.Lock()
	defer i.gateMu.Unlock()
	if !i.state.CompareAndSwap(int32(dom.StateRunning), int32(dom.StatePaused)) {
		return perr.Conflictf("cannot pause search in state %s", i.State())
	}
	i.resume = make(chan struct{})
	i.touch()
	i.log.Info().Msg("search paused")
	return nil
}

// Resume wakes parked workers; completed batches are not scanned again
func (i *Instance) Resume() error {
	i.gateMu.Lock()
	defer i.gateMu.Unlock()
	if !i.state.CompareAndSwap(int32(dom.StatePaused), int32(dom.StateRunning)) {
		return perr.Conflictf("cannot resume search in state %s", i.State())
	}
	close(i.resume)
	i.resume = nil
	i.touch()
	i.log.Info().Msg("search resumed")
	return nil
}

// Stop cancels the search. Workers exit at the next batch boundary. When
// saveState is set the resumable record is written first; a failed save is
// logged and does not prevent the stop. Stopping a terminal instance is a no-op
func (i *Instance) Stop(ctx context.Context, saveState bool) {
	var prev dom.State
	for {
		prev = i.State()
		if prev.Terminal() {
			return
		}
		if i.state.CompareAndSwap(int32(prev), int32(dom.StateCancelled)) {
			break
		}
	}

	if saveState {
		i.saveResumable(ctx)
	}
	i.cancel()
	i.log.Info().Str("from", prev.String()).Bool("save_state", saveState).Msg("search stopping")

	if prev == dom.StateIdle {
		i.finish()
	}
}

// Wait blocks until the instance is terminal or ctx is done
func (i *Instance) Wait(ctx context.Context) (dom.Outcome, error) {
	select {
	case <-i.done:
		return i.outcome, nil
	case <-ctx.Done():
		return dom.Outcome{}, perr.Wrap(ctx.Err(), perr.ErrorCodeCancelled, "wait for search")
	}
}

// Detach releases any worker blocked on a full event channel. Events sent
// afterwards are dropped
func (i *Instance) Detach() {
	i.releaseOnce.Do(func() { close(i.release) })
}

func (i *Instance) saveResumable(ctx context.Context) {
	if i.saver == nil || i.configPath == "" {
		return
	}
	if err := i.saver.SaveResumable(ctx, i.configPath, i.LastActive()); err != nil {
		i.log.Warn().Err(err).Str("config_path", i.configPath).Msg("save resumable state failed")
	}
}

func (i *Instance) touch() { i.lastActive.Store(time.Now().UnixNano()) }

func (i *Instance) run(threads int) {
	defer i.finish()

	g, gctx := errgroup.WithContext(i.ctx)
	for w := 0; w < threads; w++ {
		g.Go(func() error { return i.worker(gctx) })
	}
	_ = g.Wait() // errors are collected in i.errs
}

func (i *Instance) worker(ctx context.Context) error {
	total := i.crit.Batches()
	for i.checkpoint(ctx) {
		n := i.cursor.Add(1) - 1
		if n >= total {
			return nil
		}
		if err := i.scanBatch(ctx, i.crit.StartBatch+n); err != nil {
			i.mu.Lock()
			i.errs = append(i.errs, err)
			i.mu.Unlock()
			i.log.Error().Err(err).Uint64("batch", i.crit.StartBatch+n).Msg("kernel failed")
			return err
		}
		i.touch()
		i.progress.Do(i.emitProgress)
	}
	return nil
}

// checkpoint reports whether the worker may claim another batch, parking it
// while the instance is paused
func (i *Instance) checkpoint(ctx context.Context) bool {
	for {
		if ctx.Err() != nil || i.halted.Load() {
			return false
		}
		i.gateMu.Lock()
		gate := i.resume
		i.gateMu.Unlock()
		if gate == nil {
			return true
		}
		select {
		case <-gate:
		case <-i.haltCh:
			return false
		case <-ctx.Done():
			return false
		}
	}
}

func (i *Instance) scanBatch(ctx context.Context, batch uint64) error {
	bt, err := seedspace.NewBatch(i.crit.BatchSize, batch)
	if err != nil {
		return err
	}

	var kerr error
	visited := bt.Each(func(_ uint64, seed string) bool {
		if i.halted.Load() {
			return false
		}
		ev, err := i.evaluate(seed)
		if err != nil {
			kerr = err
			return false
		}
		if ev.IsMatch && ev.TotalScore >= i.crit.MinScore {
			i.record(ctx, dom.Result{Seed: seed, TotalScore: ev.TotalScore, Tallies: ev.Tallies})
		}
		return true
	})

	i.seeds.Add(visited)
	i.metrics.seeds.Add(float64(visited))
	if kerr == nil && visited == bt.Len() {
		i.batchesDone.Add(1)
	}
	return kerr
}

func (i *Instance) evaluate(seed string) (ev dom.Evaluation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perr.PanicErrf("kernel panicked on seed %s: %v", seed, r)
		}
	}()
	ev, err = i.kernel.Evaluate(seed, i.filter)
	if err != nil {
		err = perr.Wrapf(err, perr.ErrorCodeKernel, "evaluate seed %s", seed)
	}
	return ev, err
}

// record appends r unless the MaxResults cap was already reached, and halts
// the scan when r fills the cap
func (i *Instance) record(ctx context.Context, r dom.Result) {
	i.mu.Lock()
	if i.halted.Load() {
		i.mu.Unlock()
		return
	}
	i.results = append(i.results, r)
	if limit := i.crit.MaxResults; limit > 0 && len(i.results) >= limit {
		i.halted.Store(true)
		close(i.haltCh)
	}
	i.mu.Unlock()

	i.metrics.results.Inc()
	i.log.Debug().Str("seed", r.Seed).Int("score", r.TotalScore).Msg("match")
	if i.events == nil {
		return
	}
	select {
	case i.events <- dom.Event{Kind: dom.EventResult, SearchID: i.id, Result: r}:
	case <-ctx.Done():
	case <-i.release:
	}
}

// emitProgress runs under the rate.Sometimes lock so snapshots go out in order
func (i *Instance) emitProgress() {
	p := i.Progress()
	i.log.Debug().
		Uint64("seeds", p.SeedsSearched).
		Int("results", p.ResultsFound).
		Float64("percent", p.PercentComplete).
		Msg("progress")
	i.send(dom.Event{Kind: dom.EventProgress, SearchID: i.id, Progress: p}, false)
}

// send delivers ev; blocking sends give up only once the instance is detached
func (i *Instance) send(ev dom.Event, blocking bool) {
	if i.events == nil {
		return
	}
	if !blocking {
		select {
		case i.events <- ev:
		default:
		}
		return
	}
	select {
	case i.events <- ev:
	case <-i.release:
	}
}

// finish resolves the terminal state exactly once and publishes the outcome
func (i *Instance) finish() {
	i.finishOnce.Do(func() {
		i.mu.Lock()
		errs := i.errs
		launched := i.launched
		i.finished = time.Now()
		if i.started.IsZero() {
			i.started = i.finished
		}
		i.mu.Unlock()

		final, err := i.settle(errs)
		i.cancel()

		p := i.Progress()
		i.outcome = dom.Outcome{
			SearchID: i.id,
			State:    final,
			Err:      err,
			Results:  i.Results(),
			Progress: p,
			Elapsed:  p.Elapsed,
		}
		if launched {
			i.metrics.active.Dec()
			i.metrics.searches.WithLabelValues(final.String()).Inc()

			ev := i.log.Info()
			if final == dom.StateFailed {
				ev = i.log.Error().Err(err)
			}
			ev.Str("state", final.String()).
				Uint64("seeds", p.SeedsSearched).
				Int("results", p.ResultsFound).
				Dur("elapsed", p.Elapsed).
				Msg("search finished")
		} else {
			i.log.Debug().Str("state", final.String()).Msg("search discarded before start")
		}

		close(i.done)
		if i.events != nil {
			i.send(dom.Event{Kind: dom.EventProgress, SearchID: i.id, Progress: p}, true)
			i.send(dom.Event{Kind: dom.EventCompleted, SearchID: i.id, Outcome: i.outcome}, true)
			close(i.events)
		}
	})
}

// settle moves a running or paused instance to Completed or Failed; a
// concurrent Stop wins
func (i *Instance) settle(errs []error) (dom.State, error) {
	target := dom.StateCompleted
	var err error
	if len(errs) > 0 {
		target = dom.StateFailed
		err = perr.Wrap(errors.Join(errs...), perr.ErrorCodeKernel, "search failed")
	}
	for {
		cur := i.State()
		if cur == dom.StateCancelled {
			return cur, nil
		}
		if cur.Terminal() {
			return cur, err
		}
		if i.state.CompareAndSwap(int32(cur), int32(target)) {
			return target, err
		}
	}
}
