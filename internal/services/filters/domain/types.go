// Package domain defines filter documents and the storage ports around them
package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Clause is one constraint entry; its keys are interpreted only by the kernel
type Clause map[string]any

// Filter is a user-authored document of Must/Should/MustNot clauses
type Filter struct {
	Name         string    `json:"name" yaml:"name" validate:"required,max=128"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	Author       string    `json:"author,omitempty" yaml:"author,omitempty"`
	DateCreated  time.Time `json:"dateCreated" yaml:"dateCreated,omitempty"`
	Deck         string    `json:"deck,omitempty" yaml:"deck,omitempty"`
	Stake        string    `json:"stake,omitempty" yaml:"stake,omitempty"`
	Must         []Clause  `json:"must,omitempty" yaml:"must,omitempty"`
	Should       []Clause  `json:"should,omitempty" yaml:"should,omitempty"`
	MustNot      []Clause  `json:"mustNot,omitempty" yaml:"mustNot,omitempty"`
	VerifiedSeed string    `json:"verifiedSeed,omitempty" yaml:"verifiedSeed,omitempty" validate:"omitempty,seed"`

	// Path is where the document was read from; empty for unsaved filters
	Path string `json:"-" yaml:"-"`
}

// Clone returns a copy whose clause slices can be modified independently
func (f *Filter) Clone() *Filter {
	if f == nil {
		return nil
	}
	c := *f
	c.Must = append([]Clause(nil), f.Must...)
	c.Should = append([]Clause(nil), f.Should...)
	c.MustNot = append([]Clause(nil), f.MustNot...)
	return &c
}

// ClauseCount returns the total number of clauses
func (f *Filter) ClauseCount() int { return len(f.Must) + len(f.Should) + len(f.MustNot) }

// Summary is the listing view of a stored filter
type Summary struct {
	Name         string
	Path         string
	Author       string
	VerifiedSeed string
	ModTime      time.Time
}

// Format is the on-disk encoding of a filter document
type Format uint8

const (
	// FormatJSON is the default encoding
	FormatJSON Format = iota
	// FormatYAML is chosen for .yaml and .yml files
	FormatYAML
)

// Extensions lists recognised file extensions in lookup order
var Extensions = []string{".json", ".yaml", ".yml"}

// FormatOf picks the encoding from a file extension
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return FormatJSON, false
}

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}
