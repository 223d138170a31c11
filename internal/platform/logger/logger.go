// Package logger owns the process zerolog root and the per-search child
// loggers hung off it
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"seedsearch/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project-wide logging type
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level      string // zerolog level name; unknown names mean info
	Format     string // "console" or "json"
	Service    string
	Writer     io.Writer // nil = stderr
	WithCaller bool
}

// FromEnv reads LOG_* through the raw view, which itself never logs
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:      rc.Get("LEVEL", "info"),
		Format:     strings.ToLower(rc.Get("FORMAT", "console")),
		Service:    rc.Get("SERVICE", "seedsearch"),
		WithCaller: rc.GetBool("CALLER", false),
	}
}

var (
	once sync.Once
	root atomic.Pointer[zerolog.Logger]
)

// Init builds the root logger. Only the first call has any effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := build(opt)
		root.Store(&l)
	})
}

// Get returns the root logger, initialising it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

func build(opt Options) Logger {
	// stdout belongs to seed lists and status lines
	w := opt.Writer
	if w == nil {
		w = os.Stderr
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	b := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if opt.Service != "" {
		b = b.Str("service", opt.Service)
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		b = b.Str("go_version", bi.GoVersion)
	}
	if opt.WithCaller {
		b = b.Caller()
	}
	return b.Logger()
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "warning":
		return zerolog.WarnLevel
	case "off":
		return zerolog.Disabled
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Named returns a child logger tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

type searchKey struct{}

type searchFields struct{ id, filter string }

// WithSearch tags ctx so C can add search_id and filter to every line
func WithSearch(ctx context.Context, searchID, filter string) context.Context {
	if searchID == "" && filter == "" {
		return ctx
	}
	return context.WithValue(ctx, searchKey{}, searchFields{id: searchID, filter: filter})
}

// C returns the root logger enriched with whatever WithSearch put on ctx
func C(ctx context.Context) *Logger {
	f, ok := ctx.Value(searchKey{}).(searchFields)
	if !ok {
		return Get()
	}
	b := Get().With()
	if f.id != "" {
		b = b.Str("search_id", f.id)
	}
	if f.filter != "" {
		b = b.Str("filter", f.filter)
	}
	l := b.Logger()
	return &l
}

// Nop returns a disabled logger
func Nop() Logger { return zerolog.Nop() }
