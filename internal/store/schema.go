package store

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS track_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			track_title TEXT NOT NULL,
			artist_name TEXT NOT NULL,
			album_name TEXT,
			album_art_url TEXT,
			timestamp INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_history_timestamp ON track_history(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_history_track_artist ON track_history(track_title, artist_name);
	`)
	if err != nil {
		return err
	}

	// Migration: version 1 databases predate album_art_url. Existing rows
	// keep a NULL value, there is no backfill.
	_, _ = db.Exec(`ALTER TABLE track_history ADD COLUMN album_art_url TEXT DEFAULT NULL`)

	// Record the current version, superseding whatever an older build left
	if _, err := db.Exec(`
		DELETE FROM schema_version WHERE version <> ?
	`, currentSchemaVersion); err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
