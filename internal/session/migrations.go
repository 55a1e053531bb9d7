package session

import (
	"fmt"
	"strings"
)

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			base_url TEXT NOT NULL,
			bearer_token TEXT NOT NULL DEFAULT '',
			retry_attempts INTEGER NOT NULL DEFAULT 3,
			retry_delay_ms INTEGER NOT NULL DEFAULT 1000,
			field_map_json TEXT NOT NULL DEFAULT '{}',
			is_current INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_profiles_current ON profiles(is_current)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// Re-running ALTER TABLE style migrations is fine; anything
			// else is a real failure.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
