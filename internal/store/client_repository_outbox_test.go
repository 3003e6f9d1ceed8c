package store

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository_Enqueue(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	db, mock := newTestDB(t)
	repo := NewOutboxRepository(db, logger.Nop())

	submission := models.TelemetrySubmission{
		DeviceID:       "dev-1",
		CollectVersion: "1.4.0",
		DeviceDateTime: "2026-03-01T09:59:00Z",
		Event:          &models.TelemetryEvent{ID: "evt-1", Type: "visit"},
	}
	payload, err := json.Marshal(submission)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox")).
		WithArgs("evt-1", string(payload), now).
		WillReturnResult(sqlmock.NewResult(5, 1))

	item, err := repo.Enqueue(testContext(), models.OutboxItem{
		ClientEventID: "evt-1",
		Submission:    submission,
		CreatedAt:     now,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_Pending(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	db, mock := newTestDB(t)
	repo := NewOutboxRepository(db, logger.Nop())

	columns := []string{"id", "client_event_id", "submission", "created_at", "attempts", "last_error"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, nil, `{"deviceId":"dev-1","collectVersion":"1.4.0","deviceDateTime":"2026-03-01T09:59:00Z"}`, now, 0, nil).
			AddRow(2, "evt-1", `{"deviceId":"dev-1","collectVersion":"1.4.0","deviceDateTime":"2026-03-01T09:59:30Z","event":{"id":"evt-1","type":"visit"}}`, now, 2, "503"))

	items, err := repo.Pending(testContext(), 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Empty(t, items[0].ClientEventID)
	assert.Nil(t, items[0].Submission.Event)
	assert.Nil(t, items[0].LastError)

	assert.Equal(t, "evt-1", items[1].ClientEventID)
	require.NotNil(t, items[1].Submission.Event)
	assert.Equal(t, "visit", items[1].Submission.Event.Type)
	assert.Equal(t, 2, items[1].Attempts)
	assert.Equal(t, "503", *items[1].LastError)
}

func TestOutboxRepository_Delete(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewOutboxRepository(db, logger.Nop())

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("DELETE FROM outbox WHERE id = ?"))
	prep.ExpectExec().WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(testContext(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkFailedAndCount(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewOutboxRepository(db, logger.Nop())

	mock.ExpectExec(regexp.QuoteMeta("SET attempts = attempts + 1")).
		WithArgs("server unavailable", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM outbox")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	require.NoError(t, repo.MarkFailed(testContext(), 3, "server unavailable"))

	count, err := repo.Count(testContext())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestLocalSessionRepository(t *testing.T) {
	expires := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	columns := []string{"actor_id", "project_id", "token", "expires_at", "invalidated"}

	t.Run("save and load", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewLocalSessionRepository(db, logger.Nop())

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO local_session")).
			WithArgs(int64(7), int64(3), "tok", expires, false).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery(regexp.QuoteMeta("FROM local_session")).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(7, 3, "tok", expires, false))

		require.NoError(t, repo.Save(testContext(), models.LocalSession{
			ActorID: 7, ProjectID: 3, Token: "tok", ExpiresAt: expires,
		}))

		session, err := repo.Load(testContext())
		require.NoError(t, err)
		assert.Equal(t, "tok", session.Token)
		assert.False(t, session.Invalidated)
	})

	t.Run("nothing saved", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewLocalSessionRepository(db, logger.Nop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM local_session")).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.Load(testContext())
		assert.ErrorIs(t, err, ErrLocalSessionNotFound)
	})

	t.Run("invalidate and clear", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := NewLocalSessionRepository(db, logger.Nop())

		mock.ExpectExec(regexp.QuoteMeta("SET invalidated = 1")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM local_session")).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkInvalidated(testContext()))
		require.NoError(t, repo.Clear(testContext()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
