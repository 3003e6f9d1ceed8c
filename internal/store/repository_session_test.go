package store

import (
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionColumnNames = []string{
	"id", "token", "actor_id", "project_id", "created_at", "expires_at",
	"ip", "user_agent", "device_id", "comments",
}

func TestSessionRepository_CreateWithCap(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	expires := now.Add(72 * time.Hour)

	session := models.Session{
		Token:     "tok",
		ActorID:   7,
		ProjectID: 3,
		CreatedAt: now,
		ExpiresAt: &expires,
		SessionProvenance: models.SessionProvenance{
			IP:       strPtr("10.0.0.1"),
			DeviceID: strPtr("dev-1"),
		},
	}

	t.Run("evicts surplus", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewSessionRepository(db, logger.Nop())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT actor_id FROM credentials WHERE actor_id = $1 FOR UPDATE")).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"actor_id"}).AddRow(7))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sessions")).
			WithArgs("tok", int64(7), now, expires, "10.0.0.1", nil, "dev-1", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(40))
		mock.ExpectExec(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")).
			WithArgs(int64(7), now, 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		stored, evicted, err := repo.CreateWithCap(testContext(), session, 3, now)
		require.NoError(t, err)
		assert.Equal(t, int64(40), stored.ID)
		assert.Equal(t, int64(3), stored.ProjectID)
		assert.Equal(t, int64(1), evicted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("credential removed", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewSessionRepository(db, logger.Nop())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"actor_id"}))
		mock.ExpectRollback()

		_, _, err := repo.CreateWithCap(testContext(), session, 3, now)
		assert.ErrorIs(t, err, ErrCredentialNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("eviction failure rolls back", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewSessionRepository(db, logger.Nop())

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
			WillReturnRows(sqlmock.NewRows([]string{"actor_id"}).AddRow(7))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sessions")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(40))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions")).
			WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		_, _, err := repo.CreateWithCap(testContext(), session, 3, now)
		assert.ErrorIs(t, err, ErrExecutingStatement)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSessionRepository_FindByToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewSessionRepository(db, logger.Nop())

		mock.ExpectQuery(regexp.QuoteMeta("JOIN credentials c ON c.actor_id = s.actor_id")).
			WithArgs("tok").
			WillReturnRows(sqlmock.NewRows(sessionColumnNames).
				AddRow(40, "tok", 7, 3, now, now.Add(time.Hour), "10.0.0.1", "agent/1.0", nil, nil))

		session, err := repo.FindByToken(testContext(), "tok")
		require.NoError(t, err)
		assert.Equal(t, int64(3), session.ProjectID)
		require.NotNil(t, session.ExpiresAt)
		assert.True(t, session.IsLive(now))
		require.NotNil(t, session.UserAgent)
		assert.Equal(t, "agent/1.0", *session.UserAgent)
		assert.Nil(t, session.DeviceID)
	})

	t.Run("unknown", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewSessionRepository(db, logger.Nop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM sessions s")).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(sessionColumnNames))

		_, err := repo.FindByToken(testContext(), "nope")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestSessionRepository_Revoke(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("single token", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewSessionRepository(db, logger.Nop())

		mock.ExpectExec(regexp.QuoteMeta("WHERE token = $1 AND actor_id = $2")).
			WithArgs("tok", int64(7), now).
			WillReturnResult(sqlmock.NewResult(0, 0))

		revoked, err := repo.RevokeToken(testContext(), 7, "tok", now)
		require.NoError(t, err)
		assert.Zero(t, revoked)
	})

	t.Run("all sessions", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewSessionRepository(db, logger.Nop())

		mock.ExpectExec(regexp.QuoteMeta("WHERE actor_id = $1 AND (expires_at IS NULL OR expires_at > $2);")).
			WithArgs(int64(7), now).
			WillReturnResult(sqlmock.NewResult(0, 3))

		revoked, err := repo.RevokeAll(testContext(), 7, nil, now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), revoked)
	})

	t.Run("all but current", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewSessionRepository(db, logger.Nop())

		mock.ExpectExec(regexp.QuoteMeta("AND token <> $3")).
			WithArgs(int64(7), now, "keep").
			WillReturnResult(sqlmock.NewResult(0, 2))

		revoked, err := repo.RevokeAll(testContext(), 7, strPtr("keep"), now)
		require.NoError(t, err)
		assert.Equal(t, int64(2), revoked)
	})
}

func TestSessionRepository_List(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	db, mock := newTestDB(t)
	repo := NewSessionRepository(db, logger.Nop())

	columns := append(append([]string{}, sessionColumnNames...), "total")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.actor_id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(41, "t2", 7, 3, now, nil, nil, nil, nil, nil, 5).
			AddRow(40, "t1", 7, 3, now.Add(-time.Hour), now, nil, nil, nil, nil, 5))

	sessions, total, err := repo.List(testContext(), models.SessionFilter{ActorID: int64Ptr(7)}, models.Page{Limit: 2}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, sessions, 2)
	assert.Nil(t, sessions[0].ExpiresAt)
	assert.False(t, sessions[1].IsLive(now))
}

func TestSessionRepository_CountLive(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	db, mock := newTestDB(t)
	repo := NewSessionRepository(db, logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sessions")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountLive(testContext(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)
}
