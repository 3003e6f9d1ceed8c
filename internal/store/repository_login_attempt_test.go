package store

import (
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/models"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAttemptRepository_RecordAttempt(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	db, mock := newTestDB(t)
	repo := NewLoginAttemptRepository(db, logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO login_attempts")).
		WithArgs("field.agent", "10.0.0.1", false, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.RecordAttempt(testContext(), models.LoginAttempt{
		Username:  "field.agent",
		Origin:    strPtr("10.0.0.1"),
		CreatedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginAttemptRepository_RecordAttempt_Unavailable(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewLoginAttemptRepository(db, logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO login_attempts")).
		WillReturnError(pgError(pgerrcode.CannotConnectNow))

	err := repo.RecordAttempt(testContext(), models.LoginAttempt{Username: "field.agent"})
	assert.ErrorIs(t, err, ErrTemporarilyUnavailable)
	assert.ErrorIs(t, err, ErrExecutingStatement)
}

func TestLoginAttemptRepository_LockStatus(t *testing.T) {
	since := time.Date(2026, 3, 1, 9, 55, 0, 0, time.UTC)
	last := since.Add(4 * time.Minute)

	t.Run("with failures", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewLoginAttemptRepository(db, logger.Nop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM login_attempts WHERE username = $2 AND NOT succeeded AND ip = $3")).
			WithArgs(since, "field.agent", "10.0.0.1").
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(5, last))

		status, err := repo.LockStatus(testContext(), "field.agent", strPtr("10.0.0.1"), since)
		require.NoError(t, err)
		assert.Equal(t, 5, status.RecentFailures)
		require.NotNil(t, status.LastFailure)
		assert.Equal(t, last, *status.LastFailure)
	})

	t.Run("never failed", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewLoginAttemptRepository(db, logger.Nop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM login_attempts WHERE username = $2 AND NOT succeeded")).
			WithArgs(since, "field.agent").
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(0, nil))

		status, err := repo.LockStatus(testContext(), "field.agent", nil, since)
		require.NoError(t, err)
		assert.Zero(t, status.RecentFailures)
		assert.Nil(t, status.LastFailure)
	})
}

func TestLoginAttemptRepository_CountOriginFailures(t *testing.T) {
	since := time.Date(2026, 3, 1, 9, 45, 0, 0, time.UTC)
	db, mock := newTestDB(t)
	repo := NewLoginAttemptRepository(db, logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ip = $1 AND NOT succeeded AND created_at >= $2")).
		WithArgs("10.0.0.1", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	count, err := repo.CountOriginFailures(testContext(), "10.0.0.1", since)
	require.NoError(t, err)
	assert.Equal(t, 21, count)
}

func TestLoginAttemptRepository_DeleteFailures(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewLoginAttemptRepository(db, logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM login_attempts WHERE username = $1 AND NOT succeeded AND ip = $2")).
		WithArgs("field.agent", "10.0.0.1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := repo.DeleteFailures(testContext(), "field.agent", strPtr("10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}

func TestOriginLockoutRepository_FindActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	columns := []string{"id", "ip", "username", "locked_at", "locked_until"}

	t.Run("active", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewOriginLockoutRepository(db, logger.Nop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM origin_lockouts")).
			WithArgs("10.0.0.1", now).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(3, "10.0.0.1", "field.agent", now.Add(-time.Minute), now.Add(29*time.Minute)))

		lockout, err := repo.FindActive(testContext(), "10.0.0.1", now)
		require.NoError(t, err)
		require.NotNil(t, lockout)
		assert.Equal(t, now.Add(29*time.Minute), lockout.LockedUntil)
		require.NotNil(t, lockout.Username)
		assert.Equal(t, "field.agent", *lockout.Username)
	})

	t.Run("none", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewOriginLockoutRepository(db, logger.Nop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM origin_lockouts")).
			WithArgs("10.0.0.1", now).
			WillReturnRows(sqlmock.NewRows(columns))

		lockout, err := repo.FindActive(testContext(), "10.0.0.1", now)
		require.NoError(t, err)
		assert.Nil(t, lockout)
	})
}

func TestOriginLockoutRepository_RecordLockout(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	db, mock := newTestDB(t)
	repo := NewOriginLockoutRepository(db, logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO origin_lockouts")).
		WithArgs("10.0.0.1", "field.agent", now, now.Add(30*time.Minute)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	stored, err := repo.RecordLockout(testContext(), models.OriginLockout{
		Origin:      "10.0.0.1",
		Username:    strPtr("field.agent"),
		LockedAt:    now,
		LockedUntil: now.Add(30 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), stored.ID)
}

func TestOriginLockoutRepository_DeleteLockouts(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewOriginLockoutRepository(db, logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM origin_lockouts WHERE username = $1")).
		WithArgs("field.agent").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.DeleteLockouts(testContext(), "field.agent", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
