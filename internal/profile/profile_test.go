package profile_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webforum/internal/auth"
	"webforum/internal/profile"
	"webforum/internal/store"
)

func newFixture(t *testing.T, maxBytes int64, maxEdge int) (*profile.Service, *store.Store, int64, string) {
	t.Helper()
	st, err := store.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, store.Migrate(st))

	userID, err := auth.NewService(st, zerolog.Nop()).Register(context.Background(), "alice", "pw")
	require.NoError(t, err)

	dir := t.TempDir()
	svc, err := profile.New(st, dir, maxBytes, maxEdge, zerolog.Nop())
	require.NoError(t, err)
	return svc, st, userID, dir
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestUpdateUsernameOnly(t *testing.T) {
	svc, _, userID, _ := newFixture(t, 10<<20, 512)
	ctx := context.Background()

	require.NoError(t, svc.Update(ctx, userID, "alice2", nil))

	user, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", user.Username)
	assert.Empty(t, user.Avatar)
}

func TestUpdateWithAvatar(t *testing.T) {
	svc, _, userID, dir := newFixture(t, 10<<20, 512)
	ctx := context.Background()

	up := &profile.Upload{Filename: "pic.png", File: bytes.NewReader(pngBytes(t, 4, 4))}
	require.NoError(t, svc.Update(ctx, userID, "alice", up))

	user, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(user.Avatar, "/uploads/avatars/"), "got %q", user.Avatar)
	assert.True(t, strings.HasSuffix(user.Avatar, ".png"))

	stored := filepath.Join(dir, "avatars", filepath.Base(user.Avatar))
	_, err = os.Stat(stored)
	assert.NoError(t, err)
}

func TestNonImageRejectedAndAvatarUnchanged(t *testing.T) {
	svc, _, userID, dir := newFixture(t, 10<<20, 512)
	ctx := context.Background()

	up := &profile.Upload{Filename: "notes.txt", File: strings.NewReader("plain text, not an image")}
	err := svc.Update(ctx, userID, "renamed", up)
	assert.ErrorIs(t, err, profile.ErrNotImage)

	// nothing was applied, not even the rename
	user, getErr := svc.Get(ctx, userID)
	require.NoError(t, getErr)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Avatar)

	entries, readErr := os.ReadDir(filepath.Join(dir, "avatars"))
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestOversizeUploadRejected(t *testing.T) {
	svc, _, userID, _ := newFixture(t, 64, 512)

	big := pngBytes(t, 32, 32) // comfortably over 64 bytes
	up := &profile.Upload{Filename: "big.png", File: bytes.NewReader(big)}
	err := svc.Update(context.Background(), userID, "alice", up)
	assert.ErrorIs(t, err, profile.ErrTooLarge)
}

func TestOversizedAvatarIsDownscaled(t *testing.T) {
	svc, _, userID, dir := newFixture(t, 10<<20, 4)
	ctx := context.Background()

	up := &profile.Upload{Filename: "big.png", File: bytes.NewReader(pngBytes(t, 16, 8))}
	require.NoError(t, svc.Update(ctx, userID, "alice", up))

	user, err := svc.Get(ctx, userID)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "avatars", filepath.Base(user.Avatar)))
	require.NoError(t, err)
	defer f.Close()

	img, _, err := image.Decode(f)
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 4)
	assert.LessOrEqual(t, img.Bounds().Dy(), 4)
}

func TestRenameToTakenUsername(t *testing.T) {
	svc, st, userID, _ := newFixture(t, 10<<20, 512)
	ctx := context.Background()

	_, err := auth.NewService(st, zerolog.Nop()).Register(ctx, "bob", "pw")
	require.NoError(t, err)

	err = svc.Update(ctx, userID, "bob", nil)
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
}

func TestRenameRefreshesSessions(t *testing.T) {
	svc, st, userID, _ := newFixture(t, 10<<20, 512)
	ctx := context.Background()

	_, _, err := st.Mutate(ctx,
		`INSERT INTO sessions(id, user_id, username, verified, expires_at) VALUES(?,?,?,?,datetime('now','+1 hour'))`,
		"tok", userID, "alice", false)
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, userID, "alice2", nil))

	var username string
	require.NoError(t, st.FetchOne(ctx, &username, `SELECT username FROM sessions WHERE id = ?`, "tok"))
	assert.Equal(t, "alice2", username)
}
