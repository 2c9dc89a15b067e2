package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Verified     bool      `db:"verified"`
	Avatar       string    `db:"avatar"`
	CreatedAt    time.Time `db:"created_at"`
}

// Thread carries the author summary from a LEFT JOIN on users, so a thread
// whose author row was deleted still lists with an empty author name.
type Thread struct {
	ID        int64         `db:"id"`
	Title     string        `db:"title"`
	Content   string        `db:"content"`
	AuthorID  sql.NullInt64 `db:"author_id"`
	CreatedAt time.Time     `db:"created_at"`

	Author         string `db:"author"`
	AuthorVerified bool   `db:"author_verified"`
}

type Post struct {
	ID        int64         `db:"id"`
	ThreadID  int64         `db:"thread_id"`
	AuthorID  sql.NullInt64 `db:"author_id"`
	Content   string        `db:"content"`
	CreatedAt time.Time     `db:"created_at"`

	Author         string `db:"author"`
	AuthorVerified bool   `db:"author_verified"`
}

type Session struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Verified  bool      `db:"verified"`
	ExpiresAt time.Time `db:"expires_at"`
}
