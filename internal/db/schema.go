package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// Tests use this schema via GetSchemaSQL() so repository code referencing a
// column that does not exist fails immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration below
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Journal (append-only record of what each run did)
CREATE TABLE IF NOT EXISTS journal (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	timestamp DATETIME NOT NULL,
	category TEXT,
	item_id TEXT,
	kind TEXT NOT NULL CHECK(kind IN ('error', 'timeout', 'skip', 'summary')),
	message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_run ON journal(run_id);
CREATE INDEX IF NOT EXISTS idx_journal_item ON journal(item_id);
CREATE INDEX IF NOT EXISTS idx_journal_timestamp ON journal(timestamp);
`

// Migration is one forward-only schema change.
type Migration struct {
	Version int
	Name    string
	Up      func(tx *sql.Tx) error
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_journal",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "index_journal_item_and_timestamp",
		Up:      migrationV2,
	},
}

// LatestVersion is the schema version SchemaSQL corresponds to.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// InitSchema creates the schema on a fresh database and upgrades an older one.
func InitSchema(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var tableCount int
	err = conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='journal'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		// Fresh install - create the current schema directly and mark all
		// migrations as applied
		if _, err := conn.Exec(SchemaSQL); err != nil {
			return err
		}
		for _, m := range migrations {
			if _, err := conn.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (?)", m.Version); err != nil {
				return err
			}
		}
		return nil
	}

	return RunMigrations(conn)
}

// RunMigrations executes all pending migrations
func RunMigrations(conn *sql.DB) error {
	var currentVersion int
	err := conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the journal with its run index
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			category TEXT,
			item_id TEXT,
			kind TEXT NOT NULL CHECK(kind IN ('error', 'timeout', 'skip', 'summary')),
			message TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_journal_run ON journal(run_id);
	`)
	return err
}

// migrationV2 speeds up `log show <item>` and `log prune`
func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_journal_item ON journal(item_id);
		CREATE INDEX IF NOT EXISTS idx_journal_timestamp ON journal(timestamp);
	`)
	return err
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
