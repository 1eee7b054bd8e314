// Package rlog provides the core's internal diagnostic logger, separate
// from command-facing error output (see cmd/ for that).
package rlog

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "ripdoc: ", log.LstdFlags)

// Printf logs an internal diagnostic. Never used for errors returned to the
// caller - those propagate as values.
func Printf(format string, args ...any) {
	std.Printf(format, args...)
}

// WarnFormatEnabled reports whether formatter-fallback warnings are
// opted into via RIPDOC_WARN_FORMAT, per the error handling design's
// "warned only under an opt-in env var" clause.
func WarnFormatEnabled() bool {
	return os.Getenv("RIPDOC_WARN_FORMAT") != ""
}
