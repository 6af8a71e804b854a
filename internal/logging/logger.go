// Package logging provides structured, colorful logging utilities for the Lumen
// image service, ensuring consistent log formatting across the daemon, the
// batching core, the HTTP API and the CLI.
//
// LOGGING FEATURES:
//   - Color-coded levels: DEBUG (purple), INFO (blue), WARN (yellow), ERROR (red), SUCCESS (green)
//   - Flexible output: configurable log levels and output suppression for CLI tools
//   - File output: any io.Writer, including a rotating file writer owned by the daemon
//   - Standard redirection: routes standard library and gin logs through the unified system
//
// INFO and SUCCESS go to stdout. WARN, ERROR and DEBUG go to stderr, unless a
// log file is configured, in which case everything goes to the file.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	stdlog "log"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	// mu guards logger replacement. Logging itself is safe for concurrent use.
	mu sync.RWMutex

	stdoutLogger = newLogger(os.Stdout)
	stderrLogger = newLogger(os.Stderr)

	// cliConfigured tracks whether a CLI tool has taken over log configuration,
	// in which case the API server leaves gin's writers alone.
	cliConfigured = false

	usingLogFile  = false
	logFileHandle io.Writer
)

// newLogger builds a charmbracelet logger with the shared timestamp format and styles.
func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	l.SetStyles(setupCustomStyles())
	return l
}

// setupCustomStyles configures the color scheme for each log level.
func setupCustomStyles() *log.Styles {
	styles := log.DefaultStyles()

	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Foreground(lipgloss.Color("#7F6DFF"))

	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Foreground(lipgloss.Color("#42E7FF"))

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Foreground(lipgloss.Color("#FFE763"))

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Foreground(lipgloss.Color("#FF4473"))

	return styles
}

func stdout() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return stdoutLogger
}

func stderr() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return stderrLogger
}

// Info logs an informational message
func Info(format string, v ...any) {
	stdout().Info(fmt.Sprintf(format, v...))
}

// Warn logs a warning message
func Warn(format string, v ...any) {
	stderr().Warn(fmt.Sprintf(format, v...))
}

// Error logs an error message
func Error(format string, v ...any) {
	stderr().Error(fmt.Sprintf(format, v...))
}

// Debug logs a debug message
func Debug(format string, v ...any) {
	stderr().Debug(fmt.Sprintf(format, v...))
}

// Success logs a success message with a green SUCCESS label. Emitted at INFO
// level, so it is suppressed whenever INFO is.
func Success(format string, v ...any) {
	l := stdout()
	if l.GetLevel() > log.InfoLevel {
		return
	}

	mu.RLock()
	var out io.Writer = os.Stdout
	if usingLogFile {
		out = logFileHandle
	}
	mu.RUnlock()

	styles := setupCustomStyles()
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("SUCCESS").
		Foreground(lipgloss.Color("#60F281"))

	tempLogger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	tempLogger.SetStyles(styles)
	tempLogger.Info(fmt.Sprintf(format, v...))
}

// parseLevel maps a level name onto a charmbracelet level, defaulting to INFO.
func parseLevel(level string) log.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return log.DebugLevel
	case "INFO":
		return log.InfoLevel
	case "WARN":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// SetLevel sets the logging level for both loggers
func SetLevel(level string) {
	logLevel := parseLevel(level)
	stdout().SetLevel(logLevel)
	stderr().SetLevel(logLevel)
}

// IsDebugEnabled reports whether DEBUG messages are currently emitted
func IsDebugEnabled() bool {
	return stderr().GetLevel() <= log.DebugLevel
}

// SetOutput redirects all log output to w, keeping the current level.
// Used by the daemon for its rotating log file. Passing nil silences logging.
func SetOutput(w io.Writer) {
	level := stdout().GetLevel()

	mu.Lock()
	defer mu.Unlock()

	if w == nil {
		stdoutLogger.SetLevel(log.FatalLevel + 1)
		stderrLogger.SetLevel(log.FatalLevel + 1)
		usingLogFile = false
		logFileHandle = nil
		return
	}

	usingLogFile = true
	logFileHandle = w

	stdoutLogger = newLogger(w)
	stderrLogger = newLogger(w)
	stdoutLogger.SetLevel(level)
	stderrLogger.SetLevel(level)
}

// SuppressOutput raises both loggers to ERROR so CLI output stays clean
func SuppressOutput() {
	stdout().SetLevel(log.ErrorLevel)
	stderr().SetLevel(log.ErrorLevel)

	mu.Lock()
	cliConfigured = true
	mu.Unlock()
}

// RestoreOutput resets both loggers to the terminal at INFO level
func RestoreOutput() {
	mu.Lock()
	defer mu.Unlock()

	usingLogFile = false
	logFileHandle = nil

	stdoutLogger = newLogger(os.Stdout)
	stderrLogger = newLogger(os.Stderr)
	stdoutLogger.SetLevel(log.InfoLevel)
	stderrLogger.SetLevel(log.InfoLevel)

	cliConfigured = true
}

// IsConfiguredByCLI reports whether a CLI tool has configured logging
func IsConfiguredByCLI() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cliConfigured
}

// ============================================================================
// GENERIC LOG INTEGRATION - General purpose writers for third-party libraries
// ============================================================================

// LevelWriter forwards log lines to a specific log level with optional prefix.
// Useful for integrating third-party libraries that expect io.Writer interfaces.
type LevelWriter struct {
	level  string
	prefix string
}

// NewLevelWriter creates a writer that logs each line at the specified level with prefix.
// Valid levels: DEBUG, INFO, WARN, ERROR
func NewLevelWriter(level, prefix string) io.Writer {
	return &LevelWriter{level: strings.ToUpper(level), prefix: prefix}
}

// Write implements io.Writer by splitting input into lines and logging each
// non-empty line at the configured level.
func (w *LevelWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		msg := line
		if w.prefix != "" {
			msg = w.prefix + ": " + line
		}
		switch w.level {
		case "DEBUG":
			Debug("%s", msg)
		case "WARN":
			Warn("%s", msg)
		case "ERROR":
			Error("%s", msg)
		default:
			Info("%s", msg)
		}
	}
	return len(p), nil
}

// RedirectStandardLog redirects Go's standard library logger output to the provided writer.
// Passing nil discards standard log output.
func RedirectStandardLog(w io.Writer) {
	if w == nil {
		stdlog.SetOutput(io.Discard)
		return
	}
	stdlog.SetOutput(w)
}
