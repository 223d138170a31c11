package service

import (
	"os"

	perr "seedsearch/internal/platform/errors"

	"github.com/fsnotify/fsnotify"
)

func (s *Svc) startWatch() error {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "create filter dir %s", s.cfg.Dir)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "create filter watcher")
	}
	if err := w.Add(s.cfg.Dir); err != nil {
		_ = w.Close()
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "watch %s", s.cfg.Dir)
	}
	s.watcher = w
	s.wg.Add(1)
	go s.watchLoop(w)
	return nil
}

// watchLoop drops cache entries for files touched outside the process; it ends
// when the watcher is closed
func (s *Svc) watchLoop(w *fsnotify.Watcher) {
	defer s.wg.Done()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				s.invalidate(cacheKey(ev.Name))
				s.log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("filter changed on disk")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("filter watcher error")
		}
	}
}
