package app

import (
	"context"
	"fmt"

	"github.com/example/nsfwsweep/internal/ports/primary"
	"github.com/example/nsfwsweep/internal/ports/secondary"
)

// LogServiceImpl implements the LogService interface.
type LogServiceImpl struct {
	journal secondary.JournalRepository
}

// NewLogService creates a new LogService with injected dependencies.
func NewLogService(journal secondary.JournalRepository) *LogServiceImpl {
	return &LogServiceImpl{
		journal: journal,
	}
}

// ListLogs retrieves journal entries matching the given filters.
func (s *LogServiceImpl) ListLogs(ctx context.Context, filters primary.LogFilters) ([]*primary.LogEntry, error) {
	records, err := s.journal.List(ctx, secondary.JournalFilters{
		RunID:    filters.RunID,
		Category: filters.Category,
		ItemID:   filters.ItemID,
		Kind:     filters.Kind,
		Limit:    filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	entries := make([]*primary.LogEntry, len(records))
	for i, r := range records {
		entries[i] = s.recordToLogEntry(r)
	}
	return entries, nil
}

// PruneLogs deletes journal entries older than the specified number of days.
func (s *LogServiceImpl) PruneLogs(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays <= 0 {
		return 0, fmt.Errorf("days must be positive, got %d", olderThanDays)
	}
	return s.journal.PruneOlderThan(ctx, olderThanDays)
}

// Helper methods

func (s *LogServiceImpl) recordToLogEntry(r *secondary.JournalRecord) *primary.LogEntry {
	return &primary.LogEntry{
		ID:        r.ID,
		RunID:     r.RunID,
		Timestamp: r.Timestamp,
		Category:  r.Category,
		ItemID:    r.ItemID,
		Kind:      r.Kind,
		Message:   r.Message,
	}
}

// Ensure LogServiceImpl implements the interface
var _ primary.LogService = (*LogServiceImpl)(nil)
