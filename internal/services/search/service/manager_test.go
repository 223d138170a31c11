package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	perr "seedsearch/internal/platform/errors"
	kit "seedsearch/internal/platform/testkit"
	fdom "seedsearch/internal/services/filters/domain"
	dom "seedsearch/internal/services/search/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedState struct {
	path string
	at   time.Time
}

type fakeSaver struct {
	mu    sync.Mutex
	saved []savedState
	err   error
}

func (f *fakeSaver) SaveResumable(_ context.Context, path string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, savedState{path: path, at: at})
	return f.err
}

func (f *fakeSaver) calls() []savedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]savedState(nil), f.saved...)
}

func TestRunQuickSearch_NineOfThirtyFive(t *testing.T) {
	kit.NoLeaks(t)
	want := batchSeeds(t, 1, 0, 0, 3, 5, 8, 13, 21, 30, 33, 34)
	m := newTestManager(t, matchSet(want...))

	res := m.RunQuickSearch(context.Background(), dom.Criteria{BatchSize: 1, StartBatch: 0, EndBatch: 1, MaxResults: 20}, testFilter)
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.False(t, res.Cancelled)
	assert.Equal(t, 9, res.Count)
	assert.ElementsMatch(t, want, res.Seeds)
	assert.Len(t, res.Results, 9)
	assert.Greater(t, res.Elapsed, time.Duration(0))
	assert.Empty(t, m.List(), "quick searches are never registered")
}

func TestRunQuickSearch_InvalidAndCancelled(t *testing.T) {
	kit.NoLeaks(t)
	m := newTestManager(t, dom.KernelFunc(matchNone))

	res := m.RunQuickSearch(context.Background(), dom.Criteria{BatchSize: 9, EndBatch: 1}, testFilter)
	assert.False(t, res.Success)
	assert.True(t, perr.IsCode(res.Err, perr.ErrorCodeValidation))

	res = m.RunQuickSearch(context.Background(), dom.Criteria{BatchSize: 1, EndBatch: 1}, nil)
	assert.True(t, perr.IsCode(res.Err, perr.ErrorCodeInvalidArgument))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	res = m.RunQuickSearch(ctx, endless, testFilter)
	assert.False(t, res.Success)
	assert.True(t, res.Cancelled)
	assert.NoError(t, res.Err)
}

func TestCreateSearch_DuplicateID(t *testing.T) {
	kit.NoLeaks(t)
	m := newTestManager(t, dom.KernelFunc(matchNone))

	_, err := m.CreateSearch(context.Background(), WithSearchID("fixed"))
	require.NoError(t, err)
	_, err = m.CreateSearch(context.Background(), WithSearchID("fixed"))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeDuplicateKey), "got %v", err)

	_, err = m.StartSearch(context.Background(), dom.Criteria{BatchSize: 1, EndBatch: 1}, testFilter, WithSearchID("fixed"))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeDuplicateKey))

	assert.True(t, m.RemoveSearch(context.Background(), "fixed"))
}

func TestCreateSearch_GeneratedIDs(t *testing.T) {
	kit.NoLeaks(t)
	ids := []string{"a", "a", "b"}
	n := 0
	kit.Swap(t, &newID, func() string { n++; return ids[n-1] })

	m := newTestManager(t, dom.KernelFunc(matchNone))
	first, err := m.CreateSearch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", first.ID())
	_, err = m.CreateSearch(context.Background())
	assert.True(t, perr.IsCode(err, perr.ErrorCodeDuplicateKey))
	second, err := m.CreateSearch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", second.ID())

	got := m.List()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID())
	for _, s := range got {
		m.RemoveSearch(context.Background(), s.ID())
	}
}

func TestRemoveSearch_StopsThenEvicts(t *testing.T) {
	kit.NoLeaks(t)
	saver := &fakeSaver{}
	m := newTestManager(t, dom.KernelFunc(matchNone))
	m.SetStateSaver(saver)

	inst, err := m.StartSearch(context.Background(), endless, testFilter)
	require.NoError(t, err)
	got, ok := m.GetSearch(inst.ID())
	require.True(t, ok)
	require.Same(t, inst, got)
	assert.Equal(t, dom.StateRunning, inst.State())

	assert.True(t, m.RemoveSearch(context.Background(), inst.ID()))
	assert.Equal(t, dom.StateCancelled, inst.State())
	_, ok = m.GetSearch(inst.ID())
	assert.False(t, ok)
	assert.False(t, m.RemoveSearch(context.Background(), inst.ID()))

	waitDone(t, inst)
	assert.Empty(t, saver.calls(), "removal never saves state")
}

func TestStopSaveState(t *testing.T) {
	kit.NoLeaks(t)
	saver := &fakeSaver{}
	m := newTestManager(t, dom.KernelFunc(matchNone))
	m.SetStateSaver(saver)

	inst, err := m.StartSearch(context.Background(), endless, testFilter)
	require.NoError(t, err)
	t.Cleanup(inst.Detach)
	assert.Equal(t, testFilter.Path, inst.ConfigPath())
	assert.Equal(t, "perkeo", inst.FilterName())

	inst.Stop(context.Background(), true)
	waitDone(t, inst)
	calls := saver.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, testFilter.Path, calls[0].path)
	assert.WithinDuration(t, time.Now(), calls[0].at, 5*time.Second)
}

func TestStopSaveState_ErrorIsLogged(t *testing.T) {
	kit.NoLeaks(t)
	saver := &fakeSaver{err: errors.New("disk full")}
	m := newTestManager(t, dom.KernelFunc(matchNone))
	m.SetStateSaver(saver)

	inst, err := m.StartSearch(context.Background(), endless, testFilter)
	require.NoError(t, err)
	t.Cleanup(inst.Detach)

	kit.MustNotPanic(t, func() { inst.Stop(context.Background(), true) })
	out := waitDone(t, inst)
	assert.Equal(t, dom.StateCancelled, out.State)
	assert.Len(t, saver.calls(), 1)
}

func TestReserveSearch(t *testing.T) {
	kit.NoLeaks(t)
	m := newTestManager(t, dom.KernelFunc(matchNone))

	_, err := m.ReserveSearch(context.Background(), "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	id, err := m.ReserveSearch(context.Background(), "/filters/perkeo.yaml")
	require.NoError(t, err)
	inst, ok := m.GetSearch(id)
	require.True(t, ok)
	assert.Equal(t, dom.StateIdle, inst.State())
	assert.Equal(t, "/filters/perkeo.yaml", inst.ConfigPath())
	assert.Equal(t, "perkeo", inst.FilterName())

	require.NoError(t, inst.Start(dom.Criteria{BatchSize: 1, EndBatch: 2}, &fdom.Filter{Name: "perkeo"}))
	t.Cleanup(inst.Detach)
	out := waitDone(t, inst)
	assert.Equal(t, dom.StateCompleted, out.State)
	assert.Equal(t, uint64(70), out.Progress.SeedsSearched)
}

func TestShutdown_SavesMostRecent(t *testing.T) {
	kit.NoLeaks(t)
	saver := &fakeSaver{}
	m := newTestManager(t, dom.KernelFunc(matchNone))
	m.SetStateSaver(saver)

	older, err := m.StartSearch(context.Background(), endless, &fdom.Filter{Name: "old", Path: "/f/old.json"})
	require.NoError(t, err)
	t.Cleanup(older.Detach)
	require.NoError(t, older.Pause())
	time.Sleep(20 * time.Millisecond)

	newer, err := m.StartSearch(context.Background(), endless, &fdom.Filter{Name: "new", Path: "/f/new.json"})
	require.NoError(t, err)
	t.Cleanup(newer.Detach)

	finished, err := m.StartSearch(context.Background(), dom.Criteria{BatchSize: 1, EndBatch: 1}, &fdom.Filter{Name: "done", Path: "/f/done.json"})
	require.NoError(t, err)
	t.Cleanup(finished.Detach)
	waitDone(t, finished)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.Shutdown(ctx, true)

	assert.Equal(t, dom.StateCancelled, older.State())
	assert.Equal(t, dom.StateCancelled, newer.State())
	assert.Equal(t, dom.StateCompleted, finished.State())
	calls := saver.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/f/new.json", calls[0].path)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	kit.NoLeaks(t)
	m := newTestManager(t, dom.KernelFunc(matchNone))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 20; n++ {
				inst, err := m.StartSearch(context.Background(), dom.Criteria{BatchSize: 1, EndBatch: 1}, testFilter)
				if err != nil {
					t.Errorf("start: %v", err)
					return
				}
				_, _ = m.GetSearch(inst.ID())
				_ = m.List()
				m.RemoveSearch(context.Background(), inst.ID())
			}
		}()
	}
	wg.Wait()
	assert.Empty(t, m.List())
}
