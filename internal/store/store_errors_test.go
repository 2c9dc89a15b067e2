package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webforum/internal/store"
)

func newMockStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(sqlx.NewDb(db, "sqlmock"), zerolog.Nop()), mock
}

func TestMutatePropagatesEngineError(t *testing.T) {
	st, mock := newMockStore(t)
	boom := errors.New("disk I/O error")
	mock.ExpectExec("INSERT INTO users").WillReturnError(boom)

	_, _, err := st.Mutate(context.Background(), `INSERT INTO users(username) VALUES(?)`, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, store.IsUniqueViolation(err))
}

func TestFetchOneKeepsEngineErrorsDistinctFromAbsence(t *testing.T) {
	st, mock := newMockStore(t)
	boom := errors.New("malformed schema")
	mock.ExpectQuery("SELECT").WillReturnError(boom)

	var n int64
	err := st.FetchOne(context.Background(), &n, `SELECT id FROM users WHERE id = ?`, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, err, boom)
}

func TestFetchManyPropagatesEngineError(t *testing.T) {
	st, mock := newMockStore(t)
	boom := errors.New("database is locked")
	mock.ExpectQuery("SELECT").WillReturnError(boom)

	var ids []int64
	err := st.FetchMany(context.Background(), &ids, `SELECT id FROM users`)
	assert.ErrorIs(t, err, boom)
}
