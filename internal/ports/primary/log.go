package primary

import "context"

// LogService defines the primary port for reading the run journal.
type LogService interface {
	// ListLogs retrieves journal entries matching the given filters.
	ListLogs(ctx context.Context, filters LogFilters) ([]*LogEntry, error)

	// PruneLogs deletes journal entries older than the specified number of days.
	PruneLogs(ctx context.Context, olderThanDays int) (int, error)
}

// LogEntry represents a journal entry at the port boundary.
type LogEntry struct {
	ID        int64
	RunID     string
	Timestamp string
	Category  string
	ItemID    string
	Kind      string // 'error', 'timeout', 'skip', 'summary'
	Message   string
}

// LogFilters contains filter options for querying logs.
type LogFilters struct {
	RunID    string
	Category string
	ItemID   string
	Kind     string
	Limit    int
}
