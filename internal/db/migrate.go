package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations in order. Statements are idempotent;
// ALTER TABLE duplicates from re-runs are tolerated the same way fresh
// CREATE TABLE IF NOT EXISTS statements are.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// Global typology catalog. Root categories have a NULL parent; every
	// non-root entry must reference an existing catalog entry.
	`CREATE TABLE IF NOT EXISTS issues (
		id     TEXT PRIMARY KEY,
		parent TEXT REFERENCES issues(id),
		name   TEXT NOT NULL DEFAULT ''
	)`,

	// Review projects. Word counts are fixed at bitext ingestion and never
	// mutated by later issue activity.
	`CREATE TABLE IF NOT EXISTS projects (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		finished            INTEGER NOT NULL DEFAULT 0,
		last_segment        INTEGER NOT NULL DEFAULT 1,
		bitext_file         TEXT NOT NULL DEFAULT '',
		metric_file         TEXT NOT NULL DEFAULT '',
		specifications_file TEXT NOT NULL DEFAULT '',
		specifications      TEXT NOT NULL DEFAULT '',
		source_word_count   INTEGER NOT NULL DEFAULT 0,
		target_word_count   INTEGER NOT NULL DEFAULT 0,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,

	// Reviewer assignments. The composite key surfaces duplicate
	// assignments as a constraint violation.
	`CREATE TABLE IF NOT EXISTS project_users (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL,
		PRIMARY KEY (project_id, user_id)
	)`,

	// Catalog subset enabled for one project, created while processing an
	// uploaded metric file.
	`CREATE TABLE IF NOT EXISTS project_issues (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		issue_id   TEXT NOT NULL REFERENCES issues(id),
		display    INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (project_id, issue_id)
	)`,

	// Aligned sentence pairs. Replaced wholesale on bitext re-upload.
	`CREATE TABLE IF NOT EXISTS segments (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		source_text TEXT NOT NULL DEFAULT '',
		target_text TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_segments_project ON segments(project_id)`,

	// Reviewer-reported issue instances.
	`CREATE TABLE IF NOT EXISTS segment_issues (
		id              TEXT PRIMARY KEY,
		segment_id      TEXT NOT NULL REFERENCES segments(id) ON DELETE CASCADE,
		issue_id        TEXT NOT NULL REFERENCES issues(id),
		type            TEXT NOT NULL CHECK (type IN ('source','target')),
		level           TEXT NOT NULL CHECK (level IN ('neutral','minor','major','critical')),
		note            TEXT NOT NULL DEFAULT '',
		highlight_start INTEGER NOT NULL DEFAULT 0,
		highlight_end   INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_segment_issues_segment ON segment_issues(segment_id)`,
}
