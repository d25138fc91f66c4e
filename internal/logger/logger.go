// Package logger provides levelled logging for macrorun.
// Debug and Info lines are printed only in verbose mode; Warn and Error
// are always printed. An optional log file receives every line regardless
// of verbosity, so a failed stage can be inspected after the fact.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	file    io.WriteCloser
	now     = time.Now
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

// SetOutput sets the output writer for console logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// OpenFile appends every log line to the file at path.
// Any previously opened log file is closed.
func OpenFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
	}
	file = f
	return nil
}

// Close closes the log file if one is open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write("DEBUG", false, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write("INFO", false, format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	write("WARN", true, format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	write("ERROR", true, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func write(level string, always bool, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()

	line := fmt.Sprintf("["+level+"] "+format+"\n", args...)
	if verbose || always {
		fmt.Fprint(output, line)
	}
	if file != nil {
		fmt.Fprintf(file, "%s %s", now().Format(time.RFC3339), line)
	}
}
