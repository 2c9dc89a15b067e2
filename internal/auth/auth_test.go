package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webforum/internal/auth"
	"webforum/internal/models"
)

func registerUser(t *testing.T, svc *auth.Service) *models.User {
	t.Helper()
	id, err := svc.Register(context.Background(), "alice", "pw")
	require.NoError(t, err)
	return &models.User{ID: id, Username: "alice"}
}

// sessionRequest returns a request carrying the cookies set on w.
func sessionRequest(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestSessionLifecycle(t *testing.T) {
	st := newTestStore(t)
	svc := auth.NewService(st, zerolog.Nop())
	sessions := auth.NewSessions(st, time.Hour)
	ctx := context.Background()
	user := registerUser(t, svc)

	w := httptest.NewRecorder()
	require.NoError(t, sessions.Create(ctx, w, user))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)

	id, ok := sessions.Current(ctx, sessionRequest(w))
	require.True(t, ok)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, "alice", id.Username)
	assert.False(t, id.Verified)
}

func TestCurrentWithoutCookieIsAnonymous(t *testing.T) {
	sessions := auth.NewSessions(newTestStore(t), time.Hour)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := sessions.Current(context.Background(), r)
	assert.False(t, ok)
}

func TestExpiredSessionIsAnonymous(t *testing.T) {
	st := newTestStore(t)
	svc := auth.NewService(st, zerolog.Nop())
	sessions := auth.NewSessions(st, time.Hour)
	ctx := context.Background()
	user := registerUser(t, svc)

	w := httptest.NewRecorder()
	require.NoError(t, sessions.Create(ctx, w, user))

	_, _, err := st.Mutate(ctx,
		`UPDATE sessions SET expires_at = ? WHERE user_id = ?`,
		time.Now().Add(-time.Minute), user.ID)
	require.NoError(t, err)

	_, ok := sessions.Current(ctx, sessionRequest(w))
	assert.False(t, ok)
}

func TestDestroyEndsSession(t *testing.T) {
	st := newTestStore(t)
	svc := auth.NewService(st, zerolog.Nop())
	sessions := auth.NewSessions(st, time.Hour)
	ctx := context.Background()
	user := registerUser(t, svc)

	w := httptest.NewRecorder()
	require.NoError(t, sessions.Create(ctx, w, user))
	r := sessionRequest(w)

	w2 := httptest.NewRecorder()
	sessions.Destroy(ctx, w2, r)

	// the client is told to drop the cookie
	cookies := w2.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Expires.Before(time.Now()))

	// and the old token no longer resolves server-side
	_, ok := sessions.Current(ctx, r)
	assert.False(t, ok)

	// destroying again is harmless
	sessions.Destroy(ctx, httptest.NewRecorder(), r)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	_, ok := auth.IdentityFrom(ctx)
	assert.False(t, ok)

	id := &auth.Identity{UserID: 7, Username: "alice"}
	got, ok := auth.IdentityFrom(auth.WithIdentity(ctx, id))
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = auth.IdentityFrom(auth.WithIdentity(ctx, nil))
	assert.False(t, ok)
}
