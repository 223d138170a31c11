package sqlite

import (
	"context"
	"strings"
	"time"

	"seedsearch/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent is one finished statement
type QueryEvent struct {
	SQL     string
	Args    any
	Elapsed time.Duration
	Err     error
	Slow    bool // Elapsed reached the configured slow threshold
}

// QueryTracer observes finished statements
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs each statement at info, and slow or failed ones at warn. It
// ignores the root level so SERVICE_SQLITE_LOG_SQL works on its own
func Tracer(root logger.Logger) QueryTracer {
	return logTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "sqlite").Logger()}
}

type logTracer struct{ log logger.Logger }

func (t logTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	lvl := zerolog.InfoLevel
	if ev.Slow || ev.Err != nil {
		lvl = zerolog.WarnLevel
	}
	t.log.WithLevel(lvl).Ctx(ctx).
		Dur("elapsed", ev.Elapsed).
		Bool("slow", ev.Slow).
		Str("sql", strings.Join(strings.Fields(ev.SQL), " ")).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("sqlite query")
}
