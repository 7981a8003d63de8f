package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultLogFile = "replay-control.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	out          io.WriteCloser
	base         zerolog.Logger
	configured   bool
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// logger lazily opens the log file so that packages logging before
// Configure still land somewhere sensible.
func logger() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !configured {
		openLocked()
	}
	return base
}

func openLocked() {
	if out != nil {
		_ = out.Close()
		out = nil
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
		base = zerolog.Nop()
		configured = true
		return
	}
	out = f
	base = zerolog.New(f).With().Timestamp().Str("service", "replay-control").Logger()
	configured = true
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	logPath = defaultLogFile
	if strings.TrimSpace(path) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		} else {
			logPath = path
		}
	}
	openLocked()
}

// SetOutput routes every log entry to w. Used by tests and the headless CLI.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		_ = out.Close()
		out = nil
	}
	base = zerolog.New(w).With().Timestamp().Str("service", "replay-control").Logger()
	configured = true
}

// Path reports the active log file.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether trace entries are currently written.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Component returns a child logger annotated with the given component name.
func Component(name string) zerolog.Logger {
	l := logger()
	return l.With().Str("component", name).Logger()
}

// Error writes errors to the shared log file.
func Error(err error) {
	if err == nil {
		return
	}
	l := logger()
	l.Error().Err(err).Send()
}

// Trace appends a structured entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	if !TraceEnabled() {
		return
	}
	l := logger()
	ev := l.Debug().Str("event", event)
	if payload != nil {
		ev = ev.Interface("payload", payload)
	}
	ev.Msg("trace")
}
