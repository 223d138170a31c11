// Package version reports the build stamp of the seedsearch binary
package version

import "fmt"

// BuildInfo holds version information about the build
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// String renders the stamp on one line
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", b.Service, b.Version, b.Commit, b.Date)
}

// Info returns the build information.
// Set via -ldflags "-X 'seedsearch/internal/core/version.version=v0.1.0'
// -X 'seedsearch/internal/core/version.commit=abcd' -X 'seedsearch/internal/core/version.date=2026-10-19'"
func Info() BuildInfo {
	return BuildInfo{
		Service: "seedsearch",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
