package module

import (
	"seedsearch/internal/platform/config"
	dom "seedsearch/internal/services/validation/domain"
)

// Options controls progressive validation
type Options struct {
	BatchSize           int
	PermissiveThreshold int
	Phases              []dom.Phase // override only
}

// FromConfig reads with CORE_VALIDATE_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_VALIDATE_")
	return Options{
		BatchSize:           c.MayInt("BATCH_SIZE", dom.DefaultBatchSize),
		PermissiveThreshold: c.MayInt("PERMISSIVE_THRESHOLD", dom.DefaultPermissiveThreshold),
	}
}
