package module

import (
	"time"

	"seedsearch/internal/platform/config"
	"seedsearch/internal/services/profile/domain"
)

// Options controls the profile store
type Options struct {
	MaxAge  time.Duration
	Retries int
}

// FromConfig reads with CORE_PROFILE_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_PROFILE_")
	return Options{
		MaxAge:  c.MayDuration("MAX_AGE", domain.DefaultMaxAge),
		Retries: c.MayInt("RETRIES", 3),
	}
}
