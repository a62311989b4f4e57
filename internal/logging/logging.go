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

const defaultLogFile = "popup-launcher.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	logFile      *os.File
	level        = zerolog.InfoLevel
	base         = zerolog.New(io.Discard)
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing. Until Configure is
// called, log output is discarded.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(path) == "" {
		path = defaultLogFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		path = defaultLogFile
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
		return
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	logPath = path
	base = zerolog.New(f).With().Timestamp().Logger()
}

// SetOutput redirects logging to w. Used by tests and by callers that manage
// their own sink.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = zerolog.New(w).With().Timestamp().Logger()
}

// Path reports the configured log file.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// SetLevel parses and applies a level name; unknown names keep info.
func SetLevel(name string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	mu.Lock()
	level = lvl
	mu.Unlock()
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

func current() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return base.Level(level)
}

// Component returns a logger tagged with the given subsystem name.
func Component(name string) zerolog.Logger {
	return current().With().Str("component", name).Logger()
}

// Error records err at error level. Nil errors are ignored.
func Error(err error) {
	if err == nil {
		return
	}
	l := current()
	l.Error().Err(err).Send()
}

// Warn records a recoverable problem.
func Warn(msg string, err error) {
	l := current()
	evt := l.Warn()
	if err != nil {
		evt = evt.Err(err)
	}
	evt.Msg(msg)
}

// Info records a lifecycle message.
func Info(msg string) {
	l := current()
	l.Info().Msg(msg)
}

// Trace appends a structured entry to the log when tracing is enabled,
// regardless of the configured level.
func Trace(event string, payload interface{}) {
	mu.Lock()
	enabled := traceEnabled
	mu.Unlock()
	if !enabled {
		return
	}
	l := current()
	evt := l.Log().Str("event", event)
	if payload != nil {
		evt = evt.Interface("payload", payload)
	}
	evt.Msg("trace")
}
