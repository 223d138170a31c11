package service

import (
	"context"

	dom "seedsearch/internal/services/search/domain"
)

// Handlers receive an instance's events. Nil handlers are skipped
type Handlers struct {
	OnStarted   func(dom.Progress)
	OnProgress  func(dom.Progress)
	OnResult    func(dom.Result)
	OnCompleted func(dom.Outcome)
}

// Dispatch is the single consumer of inst's events. It calls the handlers in
// delivery order on the calling goroutine and returns after EventCompleted.
// If ctx ends first the instance is detached so its workers never block on
// the channel again
func Dispatch(ctx context.Context, inst *Instance, h Handlers) error {
	events := inst.Events()
	if events == nil {
		out, err := inst.Wait(ctx)
		if err != nil {
			return err
		}
		if h.OnCompleted != nil {
			h.OnCompleted(out)
		}
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			inst.Detach()
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Kind {
			case dom.EventStarted:
				if h.OnStarted != nil {
					h.OnStarted(ev.Progress)
				}
			case dom.EventProgress:
				if h.OnProgress != nil {
					h.OnProgress(ev.Progress)
				}
			case dom.EventResult:
				if h.OnResult != nil {
					h.OnResult(ev.Result)
				}
			case dom.EventCompleted:
				if h.OnCompleted != nil {
					h.OnCompleted(ev.Outcome)
				}
				return nil
			}
		}
	}
}
