//go:build debug

// Package debug provides a logger compiled entirely out of normal
// builds. The dispatch loop and pipe operations call Logf freely;
// under a plain `go build` those calls disappear rather than paying
// for a disabled log statement on every steal attempt.
package debug

import (
	"fmt"
	"log"
	"os"
)

var logger = log.New(os.Stderr, "[ENKI DEBUG] ", log.Ltime|log.Lmicroseconds|log.Lshortfile)

// Logf logs a debug message when the binary is built with -tags debug.
func Logf(format string, args ...any) {
	logger.Output(2, fmt.Sprintf(format, args...))
}
