// Package profile updates a user's display name and avatar.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"webforum/internal/auth"
	"webforum/internal/models"
	"webforum/internal/store"
)

var (
	ErrNotImage = errors.New("only images are allowed")
	ErrTooLarge = errors.New("file exceeds the maximum size")
)

// Upload is an avatar file received with the profile form.
type Upload struct {
	Filename string
	File     io.Reader
}

type Service struct {
	store    *store.Store
	dir      string // upload root, served under /uploads/
	maxBytes int64
	maxEdge  int
	log      zerolog.Logger
}

func New(st *store.Store, uploadDir string, maxBytes int64, maxEdge int, log zerolog.Logger) (*Service, error) {
	if err := os.MkdirAll(filepath.Join(uploadDir, "avatars"), 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}
	return &Service{store: st, dir: uploadDir, maxBytes: maxBytes, maxEdge: maxEdge, log: log}, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := s.store.FetchOne(ctx, &user,
		`SELECT id, username, password_hash, verified, avatar, created_at FROM users WHERE id = ?`, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update overwrites the user's username and, when an upload is supplied,
// their avatar reference. A rejected upload leaves the row untouched. A
// username collision surfaces as auth.ErrUsernameTaken via the unique
// index, the same signal registration uses.
func (s *Service) Update(ctx context.Context, userID int64, username string, up *Upload) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	avatar := user.Avatar
	if up != nil {
		avatar, err = s.saveAvatar(userID, up)
		if err != nil {
			return err
		}
	}

	_, _, err = s.store.Mutate(ctx,
		`UPDATE users SET username = ?, avatar = ? WHERE id = ?`, username, avatar, userID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return auth.ErrUsernameTaken
		}
		return err
	}

	// sessions carry a copy of the username; keep them in step
	_, _, err = s.store.Mutate(ctx,
		`UPDATE sessions SET username = ? WHERE user_id = ?`, username, userID)
	return err
}

// saveAvatar filters, shrinks and stores the upload, returning the public
// reference. Filenames are the caller's id plus the upload time, so two
// uploads never collide.
func (s *Service) saveAvatar(userID int64, up *Upload) (string, error) {
	data, err := io.ReadAll(io.LimitReader(up.File, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", ErrNotImage
	}

	data = s.shrink(data)

	ext := strings.ToLower(filepath.Ext(up.Filename))
	if ext == "" {
		ext = ".img"
	}
	name := fmt.Sprintf("%d-%d%s", userID, time.Now().UnixMilli(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, "avatars", name), data, 0o644); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return "/uploads/avatars/" + name, nil
}
