package testkit

import "testing"

// Swap replaces *target for the rest of the test, typically a package-level
// seam such as an id generator or clock, and restores it on cleanup
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}
