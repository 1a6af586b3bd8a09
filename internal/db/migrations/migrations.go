// Package migrations holds the counter database schema.
//
// The schema is a single kv table; the counter collection lives in one row
// under the "counters" key. Both the database/sql and zombiezen backends
// apply All in order and record progress in PRAGMA user_version.
package migrations

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed 001_kv.sql
var kvSQL string

// All lists the schema steps; step i brings the database to version i+1
var All = []string{
	kvSQL,
}

// Migrate brings db up to len(All). A failed step is rolled back and leaves
// user_version at the last applied step.
func Migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > len(All) {
		return fmt.Errorf("database schema version %d is newer than this tock (%d)", version, len(All))
	}

	for i := version; i < len(All); i++ {
		if err := apply(db, i); err != nil {
			return err
		}
	}
	return nil
}

func apply(db *sql.DB, i int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema step %d: %w", i+1, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(All[i]); err != nil {
		return fmt.Errorf("schema step %d failed: %w", i+1, err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
		return fmt.Errorf("failed to set schema version to %d: %w", i+1, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema step %d: %w", i+1, err)
	}
	return nil
}
