package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/nsfwsweep/internal/ports/primary"
	"github.com/example/nsfwsweep/internal/ports/secondary"
)

// mockJournalRepository implements secondary.JournalRepository for testing.
type mockJournalRepository struct {
	records     []*secondary.JournalRecord
	lastFilters secondary.JournalFilters
	pruned      int
	listErr     error
}

func (m *mockJournalRepository) Record(ctx context.Context, event secondary.Event) error {
	m.records = append(m.records, &secondary.JournalRecord{
		ID:       int64(len(m.records) + 1),
		RunID:    event.RunID,
		Category: event.Category,
		ItemID:   event.ItemID,
		Kind:     event.Kind,
		Message:  event.Message,
	})
	return nil
}

func (m *mockJournalRepository) List(ctx context.Context, filters secondary.JournalFilters) ([]*secondary.JournalRecord, error) {
	m.lastFilters = filters
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.JournalRecord
	for _, r := range m.records {
		if filters.ItemID != "" && r.ItemID != filters.ItemID {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

func (m *mockJournalRepository) PruneOlderThan(ctx context.Context, days int) (int, error) {
	return m.pruned, nil
}

func TestLogService_ListLogs(t *testing.T) {
	repo := &mockJournalRepository{}
	ctx := context.Background()
	_ = repo.Record(ctx, secondary.Event{RunID: "r1", Category: "saved", ItemID: "t3_a", Kind: secondary.EventSkip, Message: "archived"})
	_ = repo.Record(ctx, secondary.Event{RunID: "r1", Category: "saved", ItemID: "t3_b", Kind: secondary.EventError, Message: "reset"})

	service := NewLogService(repo)
	entries, err := service.ListLogs(ctx, primary.LogFilters{ItemID: "t3_a", Limit: 10})
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Kind != secondary.EventSkip || entries[0].Message != "archived" || entries[0].RunID != "r1" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
	if repo.lastFilters.Limit != 10 || repo.lastFilters.ItemID != "t3_a" {
		t.Errorf("filters not passed through: %+v", repo.lastFilters)
	}
}

func TestLogService_ListLogsError(t *testing.T) {
	service := NewLogService(&mockJournalRepository{listErr: errors.New("db locked")})

	_, err := service.ListLogs(context.Background(), primary.LogFilters{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLogService_PruneLogs(t *testing.T) {
	service := NewLogService(&mockJournalRepository{pruned: 4})

	count, err := service.PruneLogs(context.Background(), 30)
	if err != nil {
		t.Fatalf("PruneLogs failed: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}

	if _, err := service.PruneLogs(context.Background(), 0); err == nil {
		t.Error("expected error for non-positive days")
	}
}
