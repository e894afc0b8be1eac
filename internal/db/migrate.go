package db

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id              TEXT PRIMARY KEY,
		input_path      TEXT NOT NULL,
		output_dir      TEXT NOT NULL,
		reference_date  TEXT NOT NULL,
		row_count       INTEGER NOT NULL DEFAULT 0,
		status_column   TEXT NOT NULL DEFAULT '',
		mapping_json    TEXT NOT NULL DEFAULT '{}',
		collisions_json TEXT NOT NULL DEFAULT '[]',
		started_at      TEXT NOT NULL,
		finished_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	`CREATE TABLE IF NOT EXISTS run_datasets (
		run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		dataset     TEXT NOT NULL,
		outcome     TEXT NOT NULL
		            CHECK(outcome IN ('generated','missing_sources','insufficient_data','no_data','failed')),
		rows        INTEGER NOT NULL DEFAULT 0,
		path        TEXT NOT NULL DEFAULT '',
		error       TEXT NOT NULL DEFAULT '',
		duration_ns INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, dataset)
	)`,
}

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
