// Package content creates and lists threads and posts. Both are immutable
// once written; there is no edit or delete operation.
package content

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"webforum/internal/models"
	"webforum/internal/store"
)

type Service struct {
	store *store.Store
	log   zerolog.Logger
}

func New(st *store.Store, log zerolog.Logger) *Service {
	return &Service{store: st, log: log}
}

// ListThreads returns every thread, newest first, with its author summary.
// Threads keep listing after their author is deleted; the author name is
// then empty.
func (s *Service) ListThreads(ctx context.Context) ([]models.Thread, error) {
	var threads []models.Thread
	err := s.store.FetchMany(ctx, &threads,
		`SELECT t.id, t.title, t.content, t.author_id, t.created_at,
			COALESCE(u.username, '') AS author,
			COALESCE(u.verified, 0) AS author_verified
		FROM threads t LEFT JOIN users u ON u.id = t.author_id
		ORDER BY t.created_at DESC, t.id DESC`)
	if err != nil {
		return nil, err
	}
	return threads, nil
}

// CreateThread inserts a thread. Titles and bodies are stored as given;
// the storage layer's NOT NULL is the only validation.
func (s *Service) CreateThread(ctx context.Context, authorID int64, title, content string) (int64, error) {
	id, _, err := s.store.Mutate(ctx,
		`INSERT INTO threads(title, content, author_id, created_at) VALUES(?,?,?,?)`,
		title, content, authorID, time.Now())
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetThread returns one thread with its author summary, or
// store.ErrNotFound.
func (s *Service) GetThread(ctx context.Context, id int64) (*models.Thread, error) {
	var thread models.Thread
	err := s.store.FetchOne(ctx, &thread,
		`SELECT t.id, t.title, t.content, t.author_id, t.created_at,
			COALESCE(u.username, '') AS author,
			COALESCE(u.verified, 0) AS author_verified
		FROM threads t LEFT JOIN users u ON u.id = t.author_id
		WHERE t.id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListPosts returns a thread's posts in creation order, oldest first.
func (s *Service) ListPosts(ctx context.Context, threadID int64) ([]models.Post, error) {
	var posts []models.Post
	err := s.store.FetchMany(ctx, &posts,
		`SELECT p.id, p.thread_id, p.author_id, p.content, p.created_at,
			COALESCE(u.username, '') AS author,
			COALESCE(u.verified, 0) AS author_verified
		FROM posts p LEFT JOIN users u ON u.id = p.author_id
		WHERE p.thread_id = ?
		ORDER BY p.created_at ASC, p.id ASC`, threadID)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost replies to a thread. The thread is looked up first so a reply
// to a missing thread surfaces as store.ErrNotFound rather than a
// foreign-key fault.
func (s *Service) CreatePost(ctx context.Context, threadID, authorID int64, content string) (int64, error) {
	if _, err := s.GetThread(ctx, threadID); err != nil {
		return 0, err
	}
	id, _, err := s.store.Mutate(ctx,
		`INSERT INTO posts(thread_id, author_id, content, created_at) VALUES(?,?,?,?)`,
		threadID, authorID, content, time.Now())
	if err != nil {
		return 0, err
	}
	return id, nil
}
