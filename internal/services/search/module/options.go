package module

import (
	"time"

	"seedsearch/internal/platform/config"
	dom "seedsearch/internal/services/search/domain"
)

// Options controls the search manager
type Options struct {
	Threads          int
	QuickThreads     int
	EventBuffer      int
	ProgressEvery    int
	ProgressInterval time.Duration

	// SaveOnClose persists the most recently active search when the module closes
	SaveOnClose bool

	// Kernel evaluates seeds; it has no config form and must be supplied
	Kernel dom.Kernel
}

// FromConfig reads with CORE_SEARCH_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_SEARCH_")
	return Options{
		Threads:          c.MayInt("THREADS", 0),
		QuickThreads:     c.MayInt("QUICK_THREADS", 0),
		EventBuffer:      c.MayInt("EVENT_BUFFER", 256),
		ProgressEvery:    c.MayInt("PROGRESS_EVERY", 64),
		ProgressInterval: c.MayDuration("PROGRESS_INTERVAL", 250*time.Millisecond),
		SaveOnClose:      c.MayBool("SAVE_ON_CLOSE", true),
	}
}
