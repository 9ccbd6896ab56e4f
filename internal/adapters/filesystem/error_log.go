// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/example/nsfwsweep/internal/ports/secondary"
)

// DefaultErrorLogFile is the error log name used when none is configured.
const DefaultErrorLogFile = "cleanup_log.txt"

const timestampLayout = "2006-01-02 15:04:05"

// ErrorLog implements secondary.EventLog as an append-only plain text file.
// Summaries are not written; the file only holds what went wrong.
type ErrorLog struct {
	path string
	mu   sync.Mutex
}

// NewErrorLog creates an ErrorLog writing to path.
// If path is empty, defaults to cleanup_log.txt in the working directory.
func NewErrorLog(path string) *ErrorLog {
	if path == "" {
		path = DefaultErrorLogFile
	}
	return &ErrorLog{path: path}
}

// Path returns the file the log appends to.
func (l *ErrorLog) Path() string {
	return l.path
}

// Record appends one line for the event.
func (l *ErrorLog) Record(ctx context.Context, event secondary.Event) error {
	if event.Kind == secondary.EventSummary {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	// Open per write so a late write from an abandoned operation never
	// races a close.
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(event)); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}

// FormatLine renders an event as a single log line, newline included.
func FormatLine(event secondary.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", event.Time.Format(timestampLayout), event.Kind)
	if event.Category != "" {
		fmt.Fprintf(&b, " %s", event.Category)
	}
	if event.ItemID != "" {
		fmt.Fprintf(&b, " %s", event.ItemID)
	}
	// Keep one event per line even for multi-line messages.
	msg := strings.Join(strings.Fields(event.Message), " ")
	fmt.Fprintf(&b, ": %s\n", msg)
	return b.String()
}

// Ensure ErrorLog implements the interface
var _ secondary.EventLog = (*ErrorLog)(nil)
