// Package domain holds the escalation table and reports for progressive
// filter validation
package domain

import (
	perr "seedsearch/internal/platform/errors"
	fdom "seedsearch/internal/services/filters/domain"
	sdom "seedsearch/internal/services/search/domain"
)

// DefaultPermissiveThreshold is the Phase 1 match count above which a filter
// is flagged as too permissive. It is a heuristic, not an invariant
const DefaultPermissiveThreshold = 10

// DefaultBatchSize is the batch size the default phase ranges are written for
const DefaultBatchSize = 1

// Phase is one escalation step: a batch range scanned by a quick search
type Phase struct {
	Name       string
	StartBatch uint64
	EndBatch   uint64
	MaxResults int

	// Probe marks the permissiveness probe; a probe reports the match count
	// and does not write a verified seed back to the filter
	Probe bool
}

// DefaultPhases returns the escalation table in run order
func DefaultPhases() []Phase {
	return []Phase{
		{Name: "1", StartBatch: 0, EndBatch: 1, MaxResults: 20, Probe: true},
		{Name: "2a", StartBatch: 0, EndBatch: 1_000, MaxResults: 1},
		{Name: "2b", StartBatch: 0, EndBatch: 100_000, MaxResults: 1},
		{Name: "2c", StartBatch: 100_000, EndBatch: 100_250, MaxResults: 1},
		{Name: "2d", StartBatch: 0, EndBatch: 1_000_000, MaxResults: 1},
	}
}

// Criteria builds the quick-search criteria for the phase, taking deck and
// stake from the filter
func (p Phase) Criteria(batchSize int, f *fdom.Filter) sdom.Criteria {
	c := sdom.Criteria{
		BatchSize:  batchSize,
		StartBatch: p.StartBatch,
		EndBatch:   p.EndBatch,
		MaxResults: p.MaxResults,
	}
	if f != nil {
		c.Deck = f.Deck
		c.Stake = f.Stake
	}
	return c
}

// CheckPhases rejects an empty table, unnamed phases and ranges that are
// invalid for batchSize
func CheckPhases(phases []Phase, batchSize int) error {
	if len(phases) == 0 {
		return perr.WithField(perr.Validationf("at least one phase is required"), "Phases")
	}
	seen := make(map[string]bool, len(phases))
	for _, p := range phases {
		if p.Name == "" {
			return perr.WithField(perr.Validationf("phase name is required"), "Phases")
		}
		if seen[p.Name] {
			return perr.WithField(perr.Validationf("phase %s listed twice", p.Name), "Phases")
		}
		seen[p.Name] = true
		if err := p.Criteria(batchSize, nil).Validate(); err != nil {
			return perr.WithOp(err, "phase "+p.Name)
		}
	}
	return nil
}
