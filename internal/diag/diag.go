// Package diag is the line-oriented diagnostic channel for the probe.
// Every detector logs expected/observed values and per-sub-check outcomes
// under a single constant tag, logcat style: "I/CheckBeer: ..." for
// confirmations, "E/CheckBeer: ..." for suspicious findings.
package diag

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Tag is the constant tag every diagnostic line is emitted under.
const Tag = "CheckBeer"

// Severity classifies a diagnostic line.
type Severity int

const (
	Info Severity = iota
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "I"
	case Error:
		return "E"
	default:
		return "?"
	}
}

// Logger writes tagged diagnostic lines to a single writer.
// Safe for use from one goroutine at a time per check run; the mutex
// only keeps interleaved writers from tearing lines.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w}
}

var std = New(os.Stderr)

// Default returns the process-wide stderr logger.
func Default() *Logger {
	return std
}

// Discard returns a logger that drops all lines. Used by tests that
// assert on collected result lines instead of the log stream.
func Discard() *Logger {
	return New(io.Discard)
}

// Printf emits one line at the given severity.
func (l *Logger) Printf(sev Severity, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s/%s: %s\n", sev, Tag, fmt.Sprintf(format, args...))
}

// Infof emits an informational line.
func (l *Logger) Infof(format string, args ...any) {
	l.Printf(Info, format, args...)
}

// Errorf emits an error-severity line.
func (l *Logger) Errorf(format string, args ...any) {
	l.Printf(Error, format, args...)
}
