// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/nsfwsweep/internal/ports/secondary"
)

// sqliteTimestamp matches datetime('now') so pruning compares like with like.
const sqliteTimestamp = "2006-01-02 15:04:05"

// JournalRepository implements secondary.JournalRepository with SQLite.
type JournalRepository struct {
	db *sql.DB
}

// NewJournalRepository creates a new SQLite journal repository.
func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Record appends an event to the journal.
func (r *JournalRepository) Record(ctx context.Context, event secondary.Event) error {
	var category, itemID sql.NullString
	if event.Category != "" {
		category = sql.NullString{String: event.Category, Valid: true}
	}
	if event.ItemID != "" {
		itemID = sql.NullString{String: event.ItemID, Valid: true}
	}

	ts := event.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO journal (run_id, timestamp, category, item_id, kind, message) VALUES (?, ?, ?, ?, ?, ?)`,
		event.RunID,
		ts.UTC().Format(sqliteTimestamp),
		category,
		itemID,
		event.Kind,
		event.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}

	return nil
}

// List retrieves journal entries matching the given filters, newest first.
func (r *JournalRepository) List(ctx context.Context, filters secondary.JournalFilters) ([]*secondary.JournalRecord, error) {
	query := `SELECT id, run_id, timestamp, category, item_id, kind, message FROM journal WHERE 1=1`
	args := []any{}

	if filters.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, filters.RunID)
	}

	if filters.Category != "" {
		query += " AND category = ?"
		args = append(args, filters.Category)
	}

	if filters.ItemID != "" {
		query += " AND item_id = ?"
		args = append(args, filters.ItemID)
	}

	if filters.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filters.Kind)
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	defer rows.Close()

	var records []*secondary.JournalRecord
	for rows.Next() {
		var (
			category  sql.NullString
			itemID    sql.NullString
			timestamp time.Time
		)

		record := &secondary.JournalRecord{}
		err := rows.Scan(&record.ID,
			&record.RunID,
			&timestamp,
			&category,
			&itemID,
			&record.Kind,
			&record.Message)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		record.Timestamp = timestamp.Local().Format(time.RFC3339)
		record.Category = category.String
		record.ItemID = itemID.String

		records = append(records, record)
	}

	return records, rows.Err()
}

// PruneOlderThan deletes journal entries older than the given number of days.
func (r *JournalRepository) PruneOlderThan(ctx context.Context, days int) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM journal WHERE timestamp < datetime('now', ?)",
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}

	count, _ := result.RowsAffected()
	return int(count), nil
}

// Ensure JournalRepository implements the interface
var _ secondary.JournalRepository = (*JournalRepository)(nil)
