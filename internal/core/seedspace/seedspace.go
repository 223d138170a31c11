// Package seedspace maps batch coordinates onto the fixed-length seed space
//
// A seed is SeedLength symbols over Alphabet read as a base-35 number, most
// significant symbol first. With batch size b the trailing b symbols vary inside
// a batch and the leading SeedLength-b symbols are the batch number, so
// MaxBatches(b) = 35^(SeedLength-b) and batches never overlap
package seedspace

import (
	perr "seedsearch/internal/platform/errors"
)

const (
	// Alphabet lists the seed symbols in index order; 0 is not used
	Alphabet = "123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Base is the number of symbols
	Base = len(Alphabet)

	// SeedLength is the number of symbols in every seed
	SeedLength = 8

	// MinBatchSize and MaxBatchSize bound the batch size parameter
	MinBatchSize = 1
	MaxBatchSize = SeedLength
)

// pow holds 35^0 .. 35^8
var pow = func() [SeedLength + 1]uint64 {
	var p [SeedLength + 1]uint64
	p[0] = 1
	for i := 1; i <= SeedLength; i++ {
		p[i] = p[i-1] * uint64(Base)
	}
	return p
}()

// symbol index lookup, -1 for bytes outside the alphabet
var index = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < Base; i++ {
		t[Alphabet[i]] = int8(i)
	}
	return t
}()

// ValidBatchSize reports whether b is in [MinBatchSize, MaxBatchSize]
func ValidBatchSize(b int) bool { return b >= MinBatchSize && b <= MaxBatchSize }

func checkBatchSize(b int) error {
	if !ValidBatchSize(b) {
		return perr.WithField(perr.InvalidArgf("batch size %d out of range [%d,%d]", b, MinBatchSize, MaxBatchSize), "BatchSize")
	}
	return nil
}

// MaxBatches returns the number of batches for batch size b, 35^(8-b)
func MaxBatches(b int) (uint64, error) {
	if err := checkBatchSize(b); err != nil {
		return 0, err
	}
	return pow[SeedLength-b], nil
}

// SeedsPerBatch returns the number of seeds in one batch, 35^b
func SeedsPerBatch(b int) (uint64, error) {
	if err := checkBatchSize(b); err != nil {
		return 0, err
	}
	return pow[b], nil
}

// SeedCount is the size of the whole seed space
func SeedCount() uint64 { return pow[SeedLength] }

// Seed returns the seed at offset within batch
func Seed(b int, batch, offset uint64) (string, error) {
	if err := checkBatchSize(b); err != nil {
		return "", err
	}
	if batch >= pow[SeedLength-b] {
		return "", perr.WithField(perr.InvalidArgf("batch %d out of range for batch size %d", batch, b), "Batch")
	}
	if offset >= pow[b] {
		return "", perr.WithField(perr.InvalidArgf("offset %d out of range for batch size %d", offset, b), "Offset")
	}
	return Encode(batch*pow[b] + offset), nil
}

// Encode renders a global seed index; idx must be below SeedCount
func Encode(idx uint64) string {
	var buf [SeedLength]byte
	for i := SeedLength - 1; i >= 0; i-- {
		buf[i] = Alphabet[idx%uint64(Base)]
		idx /= uint64(Base)
	}
	return string(buf[:])
}

// Index parses a seed into its global index. Lowercase letters are accepted
func Index(seed string) (uint64, error) {
	if len(seed) != SeedLength {
		return 0, perr.WithField(perr.InvalidArgf("seed %q must be %d symbols", seed, SeedLength), "Seed")
	}
	var idx uint64
	for i := 0; i < SeedLength; i++ {
		c := seed[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		d := index[c]
		if d < 0 {
			return 0, perr.WithField(perr.InvalidArgf("seed %q has invalid symbol %q", seed, seed[i]), "Seed")
		}
		idx = idx*uint64(Base) + uint64(d)
	}
	return idx, nil
}

// Locate returns the batch and offset of seed for batch size b
func Locate(b int, seed string) (batch, offset uint64, err error) {
	if err := checkBatchSize(b); err != nil {
		return 0, 0, err
	}
	idx, err := Index(seed)
	if err != nil {
		return 0, 0, err
	}
	return idx / pow[b], idx % pow[b], nil
}

// Batch iterates the seeds of one batch in index order
type Batch struct {
	size  int
	num   uint64
	first uint64
}

// NewBatch validates the coordinates and returns an iterator
func NewBatch(b int, batch uint64) (Batch, error) {
	if err := checkBatchSize(b); err != nil {
		return Batch{}, err
	}
	if batch >= pow[SeedLength-b] {
		return Batch{}, perr.WithField(perr.InvalidArgf("batch %d out of range for batch size %d", batch, b), "Batch")
	}
	return Batch{size: b, num: batch, first: batch * pow[b]}, nil
}

// Number returns the batch number
func (bt Batch) Number() uint64 { return bt.num }

// Len returns the number of seeds in the batch
func (bt Batch) Len() uint64 { return pow[bt.size] }

// Each calls fn for every seed in order until fn returns false.
// It returns the number of seeds visited
func (bt Batch) Each(fn func(offset uint64, seed string) bool) uint64 {
	var digits [SeedLength]int8
	idx := bt.first
	for i := SeedLength - 1; i >= 0; i-- {
		digits[i] = int8(idx % uint64(Base))
		idx /= uint64(Base)
	}
	var buf [SeedLength]byte
	n := pow[bt.size]
	for off := uint64(0); off < n; off++ {
		for i := range digits {
			buf[i] = Alphabet[digits[i]]
		}
		if !fn(off, string(buf[:])) {
			return off + 1
		}
		// increment the varying suffix; the prefix never carries within a batch
		for i := SeedLength - 1; i >= SeedLength-bt.size; i-- {
			digits[i]++
			if int(digits[i]) < Base {
				break
			}
			digits[i] = 0
		}
	}
	return n
}
