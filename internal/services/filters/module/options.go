package module

import "seedsearch/internal/platform/config"

// Options controls the filter store
type Options struct {
	Dir   string
	Watch bool
}

// FromConfig reads with CORE_FILTERS_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_FILTERS_")
	return Options{
		Dir:   c.MayString("DIR", "./filters"),
		Watch: c.MayBool("WATCH", true),
	}
}
