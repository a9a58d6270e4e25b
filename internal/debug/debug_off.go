//go:build !debug

package debug

// Logf is a no-op outside of -tags debug builds.
func Logf(format string, args ...any) {}
