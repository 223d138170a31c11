package repokit

import (
	"context"
	"time"

	perr "seedsearch/internal/platform/errors"
)

// Guarder is a store that can check its backends
type Guarder interface {
	Guard(context.Context) error
}

// Ready checks g before modules are built on it. Without a deadline on ctx
// the check gets five seconds
func Ready(ctx context.Context, name string, g Guarder) error {
	if g == nil {
		return perr.Unavailablef("%s: nil dependency", name)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := g.Guard(ctx); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s not ready", name)
	}
	return nil
}
