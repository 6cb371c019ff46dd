package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/fsq/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// QuietMode tracks if we're emitting machine-readable output (set by main)
var QuietMode = false

// debugOutput is the writer for debug output (defaults to nil, meaning no output)
var debugOutput io.Writer

// debugFile holds the open file handle if debug output goes to a file
var debugFile *os.File

// debugMutex protects access to debug output
var debugMutex sync.Mutex

// SetQuietMode enables quiet mode which suppresses all debug output to stdio
// so JSON consumers never see log lines mixed into their stream.
func SetQuietMode(enabled bool) {
	QuietMode = enabled
}

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// InitDebugLogFile initializes debug logging to a file.
// Returns the path to the log file, or an error if initialization fails.
// Call CloseDebugLog when done to ensure the file is properly closed.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "fsq-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// IsDebugEnabled returns true if debug mode is enabled and we're not in quiet mode
func IsDebugEnabled() bool {
	if QuietMode {
		return false
	}

	// Check build flag first
	if EnableDebug == "true" {
		return true
	}

	// Allow runtime override via environment variable
	if os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true" {
		return true
	}

	return false
}

// getDebugWriter returns the writer for debug output, or nil if none is configured
func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG] "+format, args...)
}

// Log provides structured debug logging with component names
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

// LogSearch provides debug logging specifically for search operations
func LogSearch(format string, args ...interface{}) {
	Log("SEARCH", format, args...)
}

// LogQuery provides debug logging specifically for query parsing and compilation
func LogQuery(format string, args ...interface{}) {
	Log("QUERY", format, args...)
}

// LogPool provides debug logging specifically for the pattern pool
func LogPool(format string, args ...interface{}) {
	Log("POOL", format, args...)
}

// LogIndex provides debug logging specifically for index building
func LogIndex(format string, args ...interface{}) {
	Log("INDEX", format, args...)
}

// FatalAndExit outputs a catastrophic error message and exits (for CLI use only).
// This should only be used in main.go or other CLI entry points.
// Output goes to the debug log file, not stderr.
func FatalAndExit(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !QuietMode {
		w := getDebugWriter()
		if w != nil {
			fmt.Fprintf(w, "[FATAL] %s", msg)
		}
	}
	// Always exit, but silently in quiet mode
	os.Exit(1)
}
