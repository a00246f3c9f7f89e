package storage

import "fmt"

// schemaVersion is the latest schema version the migrator produces.
const schemaVersion = 2

// migrations[v-1] holds the statements for version v. Each version is
// applied inside its own transaction and recorded in schema_migrations.
var migrations = [][]string{
	// version 1: the item collection
	{
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			deck TEXT NOT NULL DEFAULT 'default',
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			step INTEGER NOT NULL DEFAULT 0,
			due_at TEXT NOT NULL,
			last_reviewed_at TEXT NULL,
			recalled INTEGER NOT NULL DEFAULT 0,
			forgot INTEGER NOT NULL DEFAULT 0,
			history TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_deck ON items(deck);`,
	},
	// version 2: session summaries and the per-review log
	{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NULL,
			reviewed INTEGER NOT NULL DEFAULT 0,
			recalled INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id INTEGER NOT NULL,
			session_id TEXT NULL,
			outcome TEXT NOT NULL,
			step_before INTEGER NOT NULL,
			step_after INTEGER NOT NULL,
			reviewed_at TEXT NOT NULL,
			FOREIGN KEY(item_id) REFERENCES items(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_item_id ON reviews(item_id);`,
	},
}

// Migrate brings the database schema up to schemaVersion. Already-applied
// versions are skipped, so calling it on every open is safe.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`); err != nil {
		return fmt.Errorf("storage: create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current); err != nil {
		return fmt.Errorf("storage: read schema version: %w", err)
	}

	for v := current + 1; v <= schemaVersion; v++ {
		if err := s.applyMigration(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) applyMigration(version int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: begin migration %d: %w", version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range migrations[version-1] {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("storage: apply migration %d: %w", version, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?);`, version); err != nil {
		return fmt.Errorf("storage: record migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit migration %d: %w", version, err)
	}
	return nil
}
