package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"webforum/internal/models"
	"webforum/internal/store"
)

const sessionCookie = "forum_session"

// Identity is the authenticated caller attached to a request. The session
// row is the sole authority for "is logged in".
type Identity struct {
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
	Verified bool   `db:"verified"`
}

// Sessions issues and resolves server-side sessions backed by the
// sessions table. The client only ever holds the opaque token.
type Sessions struct {
	store  *store.Store
	maxAge time.Duration
}

func NewSessions(st *store.Store, maxAge time.Duration) *Sessions {
	return &Sessions{store: st, maxAge: maxAge}
}

// Create opens a session for user and hands the token to the client as an
// HttpOnly cookie.
func (m *Sessions) Create(ctx context.Context, w http.ResponseWriter, user *models.User) error {
	id := uuid.New().String()
	expires := time.Now().Add(m.maxAge)

	_, _, err := m.store.Mutate(ctx,
		`INSERT INTO sessions(id, user_id, username, verified, expires_at) VALUES(?,?,?,?,?)`,
		id, user.ID, user.Username, user.Verified, expires)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	return nil
}

// Current resolves the request's session cookie to an identity. An absent,
// unknown or expired token means Anonymous.
func (m *Sessions) Current(ctx context.Context, r *http.Request) (*Identity, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	var sess models.Session
	err = m.store.FetchOne(ctx, &sess,
		`SELECT id, user_id, username, verified, expires_at FROM sessions WHERE id = ?`, c.Value)
	if err != nil || time.Now().After(sess.ExpiresAt) {
		return nil, false
	}
	return &Identity{UserID: sess.UserID, Username: sess.Username, Verified: sess.Verified}, true
}

// Destroy deletes the session row and tells the client to drop the cookie.
// Destroying a session that does not exist is a no-op.
func (m *Sessions) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if c, _ := r.Cookie(sessionCookie); c != nil && c.Value != "" {
		_, _, _ = m.store.Mutate(ctx, `DELETE FROM sessions WHERE id = ?`, c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
	})
}
