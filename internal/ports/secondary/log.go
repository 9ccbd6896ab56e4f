package secondary

import (
	"context"
	"time"
)

// Event kinds recorded by a cleanup run.
const (
	EventError   = "error"   // transient failure, item retried next pass
	EventTimeout = "timeout" // mutation exceeded its time budget
	EventSkip    = "skip"    // archived item or permanent failure, never retried
	EventSummary = "summary" // end-of-category tally
)

// Event is one append-only log entry produced by a cleanup run.
type Event struct {
	RunID    string
	Time     time.Time
	Category string
	ItemID   string // empty for summaries
	Kind     string
	Message  string
}

// EventLog defines the interface for appending run events.
// Implementations must be safe to call from a goroutine that outlived its caller.
type EventLog interface {
	// Record appends an event. Entries are never updated.
	Record(ctx context.Context, event Event) error
}

// JournalRepository defines the secondary port for the persisted event journal.
// Entries are immutable - no Update operations, but old entries can be pruned.
type JournalRepository interface {
	EventLog

	// List retrieves journal entries matching the given filters, newest first.
	List(ctx context.Context, filters JournalFilters) ([]*JournalRecord, error)

	// PruneOlderThan deletes entries older than the given number of days.
	// Returns the number of deleted entries.
	PruneOlderThan(ctx context.Context, days int) (int, error)
}

// JournalRecord represents a journal entry as stored in persistence.
type JournalRecord struct {
	ID        int64
	RunID     string
	Timestamp string
	Category  string
	ItemID    string // Empty string means null
	Kind      string
	Message   string
}

// JournalFilters contains filter options for querying the journal.
type JournalFilters struct {
	RunID    string
	Category string
	ItemID   string
	Kind     string
	Limit    int
}
