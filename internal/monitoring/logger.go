// Package monitoring holds the diagnostic logging hooks shared by the
// analysis pipeline and the chart renderers.
package monitoring

import (
	"fmt"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Warnf reports a non-fatal data problem (a coerced value, a dropped row, a
// skipped figure). It goes through Logf with a "warning: " prefix so that a
// muted logger also mutes warnings.
func Warnf(format string, v ...interface{}) {
	Logf("warning: "+format, v...)
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Capture redirects Logf into a slice until the returned restore function is
// called. It is meant for tests that assert on emitted warnings.
func Capture(lines *[]string) (restore func()) {
	original := Logf
	Logf = func(format string, v ...interface{}) {
		*lines = append(*lines, fmt.Sprintf(format, v...))
	}
	return func() { Logf = original }
}
