package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"webforum/internal/models"
	"webforum/internal/store"
)

var (
	ErrMissingFields      = errors.New("username and password required")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// dummyHash is compared against when the username does not exist, so a
// failed login costs the same whether the user is real or not.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("-"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// Service owns user records and password verification. Password hashes
// never leave this package except inside models.User rows it returns.
type Service struct {
	store *store.Store
	log   zerolog.Logger
}

func NewService(st *store.Store, log zerolog.Logger) *Service {
	return &Service{store: st, log: log}
}

// Register creates a user with a bcrypt-hashed password. The unique index
// on users.username is the authority for duplicates; there is no
// check-then-insert window.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, _, err := s.store.Mutate(ctx,
		`INSERT INTO users(username, password_hash, verified, created_at) VALUES(?,?,0,?)`,
		username, string(hash), time.Now())
	if err != nil {
		if store.IsUniqueViolation(err) {
			return 0, ErrUsernameTaken
		}
		return 0, err
	}
	return id, nil
}

// Authenticate returns the user on a correct username/password pair.
// Unknown usernames and wrong passwords are indistinguishable to the
// caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	var user models.User
	err := s.store.FetchOne(ctx, &user,
		`SELECT id, username, password_hash, verified, avatar, created_at FROM users WHERE username = ?`,
		username)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// UserByID loads a single user row.
func (s *Service) UserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.store.FetchOne(ctx, &user,
		`SELECT id, username, password_hash, verified, avatar, created_at FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SeedAdmin creates the administrator account once. It runs at startup
// before the server accepts connections and is a no-op when the account
// already exists.
func (s *Service) SeedAdmin(ctx context.Context, username, password string) error {
	var user models.User
	err := s.store.FetchOne(ctx, &user,
		`SELECT id, username, password_hash, verified, avatar, created_at FROM users WHERE username = ?`,
		username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, _, err = s.store.Mutate(ctx,
		`INSERT INTO users(username, password_hash, verified, created_at) VALUES(?,?,1,?)`,
		username, string(hash), time.Now())
	if err != nil && !store.IsUniqueViolation(err) {
		return err
	}
	s.log.Info().Str("username", username).Msg("seeded administrator account")
	return nil
}
