// Package sqlite_test contains integration tests for SQLite repositories.
//
// This file is the single point where the database schema is loaded for
// tests. Setup uses db.GetSchemaSQL() so tests run against the authoritative
// schema. Do not hardcode CREATE TABLE statements in test files.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/nsfwsweep/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedJournal inserts a raw journal row with an explicit timestamp.
func seedJournal(t *testing.T, db *sql.DB, runID, timestamp, itemID, kind string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO journal (run_id, timestamp, category, item_id, kind, message) VALUES (?, ?, 'saved', ?, ?, 'seeded')",
		runID, timestamp, itemID, kind,
	)
	if err != nil {
		t.Fatalf("failed to seed journal: %v", err)
	}
}
