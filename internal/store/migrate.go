package store

import (
	"context"
	"fmt"
)

// Migrate creates the forum schema. Statements are idempotent so this runs
// unconditionally at startup.
//
// Referential integrity is enforced (PRAGMA foreign_keys is set in Open):
// deleting a user orphans their threads and posts (author_id goes NULL),
// deleting a thread cascades to its posts, deleting a user cascades to
// their sessions.
func Migrate(s *Store) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			verified INTEGER NOT NULL DEFAULT 0,
			avatar TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS threads(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			author_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS posts(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			thread_id INTEGER NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
			author_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions(
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			username TEXT NOT NULL,
			verified INTEGER NOT NULL,
			expires_at DATETIME NOT NULL
		);`,
	}
	ctx := context.Background()
	for _, stmt := range stmts {
		if _, _, err := s.Mutate(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
