// Package logger provides verbose logging for the RPA toolkit.
// When verbose mode is enabled via the --verbose flag, every facade call
// is traced to stderr. Errors are always printed.
//
// Two formats are supported: plain "[LEVEL] message" lines, and one JSON
// object per line with time, severity and message fields, the layout
// Google Cloud Logging expects from containers.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects how log lines are rendered.
type Format int

const (
	// FormatText prints "[LEVEL] message" lines.
	FormatText Format = iota
	// FormatJSON prints structured JSON lines.
	FormatJSON
)

var (
	mu         sync.RWMutex
	verbose    bool
	format     = FormatText
	output     io.Writer = os.Stderr
	structured           = newStructured(os.Stderr)
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetFormat switches between text and JSON output.
func SetFormat(f Format) {
	mu.Lock()
	defer mu.Unlock()
	format = f
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	structured = newStructured(w)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(zapcore.DebugLevel, "DEBUG", false, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(zapcore.InfoLevel, "INFO", false, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	logf(zapcore.WarnLevel, "WARN", false, format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	logf(zapcore.ErrorLevel, "ERROR", true, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if format == FormatJSON {
		structured.Info(name)
		return
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

func logf(level zapcore.Level, prefix string, always bool, msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose && !always {
		return
	}
	if format == FormatJSON {
		if ce := structured.Check(level, fmt.Sprintf(msg, args...)); ce != nil {
			ce.Write()
		}
		return
	}
	fmt.Fprintf(output, "["+prefix+"] "+msg+"\n", args...)
}

func newStructured(w io.Writer) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "severity",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:    severityEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core)
}

// severityEncoder names levels the way Cloud Logging does (WARNING, not WARN).
func severityEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == zapcore.WarnLevel {
		enc.AppendString("WARNING")
		return
	}
	enc.AppendString(l.CapitalString())
}
