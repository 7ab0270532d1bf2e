package store

import (
	"database/sql"
	"fmt"
)

// schema is applied in order on every Open. Statements must be idempotent.
var schema = []string{
	// Client side.
	`CREATE TABLE IF NOT EXISTS client_session (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		user_id    TEXT NOT NULL,
		email      TEXT NOT NULL,
		name       TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL DEFAULT '',
		token      TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assessment_results (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence   INTEGER NOT NULL,
		user_id    TEXT NOT NULL DEFAULT '',
		path_id    TEXT NOT NULL DEFAULT '',
		module_id  TEXT NOT NULL DEFAULT '',
		lesson_id  TEXT NOT NULL,
		title      TEXT NOT NULL DEFAULT '',
		correct    INTEGER NOT NULL,
		total      INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_results_user ON assessment_results (user_id, sequence)`,

	// Backend side.
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
		name          TEXT NOT NULL,
		role          TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		token      TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS paths (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		level       TEXT NOT NULL DEFAULT '',
		position    INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS modules (
		id          TEXT PRIMARY KEY,
		path_id     TEXT NOT NULL REFERENCES paths (id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		position    INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS lessons (
		id        TEXT PRIMARY KEY,
		module_id TEXT NOT NULL REFERENCES modules (id) ON DELETE CASCADE,
		title     TEXT NOT NULL,
		content   TEXT NOT NULL DEFAULT '',
		minutes   INTEGER NOT NULL DEFAULT 0,
		position  INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL,
		timestamp     INTEGER NOT NULL,
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		purpose       TEXT NOT NULL DEFAULT '',
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
}

func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
