package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned by FetchOne when no row matches. Every other
// error coming out of this package is a storage fault the caller treats
// as fatal to the request.
var ErrNotFound = errors.New("not found")

// Store executes parameterized statements against the forum database.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// go-sqlite does not support concurrent writes
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	log.Debug().Str("path", path).Msg("database opened")
	return New(db, log), nil
}

// New wraps an existing connection. Tests use this with sqlmock.
func New(db *sqlx.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Mutate runs an INSERT/UPDATE/DELETE and reports the last inserted id and
// the number of affected rows.
func (s *Store) Mutate(ctx context.Context, query string, args ...any) (lastID, affected int64, err error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("exec: %w", err)
	}
	lastID, _ = res.LastInsertId()
	affected, _ = res.RowsAffected()
	return lastID, affected, nil
}

// FetchOne scans a single row into dest, or returns ErrNotFound.
func (s *Store) FetchOne(ctx context.Context, dest any, query string, args ...any) error {
	if err := s.db.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get: %w", err)
	}
	return nil
}

// FetchMany scans all matching rows into dest, which must be a pointer to
// a slice. No rows is not an error; dest is left empty.
func (s *Store) FetchMany(ctx context.Context, dest any, query string, args ...any) error {
	if err := s.db.SelectContext(ctx, dest, query, args...); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a sqlite unique-constraint
// failure. The schema's unique index on users.username is the authority
// for duplicate usernames; callers translate this into their own error.
func IsUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return false
	}
	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
