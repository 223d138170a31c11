// Package domain defines search requests, results, lifecycle states and the
// ports the search engine depends on
package domain

import (
	"seedsearch/internal/core/seedspace"
	perr "seedsearch/internal/platform/errors"
	"seedsearch/internal/platform/validate"
)

// Criteria describes one search request. It is built incrementally by callers
// and only validated when a search starts
type Criteria struct {
	BatchSize int `validate:"min=1,max=8"`

	// StartBatch is inclusive, EndBatch exclusive
	StartBatch uint64
	EndBatch   uint64 `validate:"gtefield=StartBatch"`

	Deck     string
	Stake    string
	MinScore int

	// MaxResults caps recorded matches; 0 means no cap
	MaxResults int `validate:"min=0"`

	// ThreadCount overrides the manager worker count when above 0
	ThreadCount int `validate:"min=0,max=1024"`
}

// Validate checks 0 <= StartBatch <= EndBatch <= MaxBatches(BatchSize)
func (c Criteria) Validate() error {
	if err := validate.Struct(c); err != nil {
		return perr.WithOp(err, "criteria.validate")
	}
	max, err := seedspace.MaxBatches(c.BatchSize)
	if err != nil {
		return perr.WithField(perr.Wrap(err, perr.ErrorCodeValidation, "invalid batch size"), "BatchSize")
	}
	if c.EndBatch > max {
		return perr.WithField(perr.Validationf("EndBatch %d exceeds %d batches for batch size %d", c.EndBatch, max, c.BatchSize), "EndBatch")
	}
	return nil
}

// Batches returns the number of batches in the range
func (c Criteria) Batches() uint64 {
	if c.EndBatch < c.StartBatch {
		return 0
	}
	return c.EndBatch - c.StartBatch
}

// Seeds returns the number of seeds covered by the range; zero for an invalid batch size
func (c Criteria) Seeds() uint64 {
	per, err := seedspace.SeedsPerBatch(c.BatchSize)
	if err != nil {
		return 0
	}
	return c.Batches() * per
}
