package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/models"
)

type outboxRepository struct {
	*DB
	logger *logger.Logger
}

func NewOutboxRepository(db *DB, logger *logger.Logger) OutboxRepository {
	return &outboxRepository{
		DB:     db,
		logger: logger,
	}
}

func (o *outboxRepository) Enqueue(ctx context.Context, item models.OutboxItem) (models.OutboxItem, error) {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(item.Submission)
	if err != nil {
		return models.OutboxItem{}, fmt.Errorf("%w: %w", ErrMarshallingJSON, err)
	}

	var clientEventID *string
	if item.ClientEventID != "" {
		clientEventID = &item.ClientEventID
	}

	result, err := o.DB.ExecContext(ctx, enqueueOutboxItem, clientEventID, string(payload), item.CreatedAt)
	if err != nil {
		log.Err(err).
			Str("func", "outboxRepository.Enqueue").
			Str("client_event_id", item.ClientEventID).
			Msg("failed to enqueue telemetry")
		return models.OutboxItem{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if item.ID, err = result.LastInsertId(); err != nil {
		return models.OutboxItem{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return item, nil
}

func (o *outboxRepository) Pending(ctx context.Context, limit int) ([]models.OutboxItem, error) {
	log := logger.FromContext(ctx)

	rows, err := o.DB.QueryContext(ctx, selectPendingOutbox, limit)
	if err != nil {
		log.Err(err).Str("func", "outboxRepository.Pending").Msg("failed to select pending telemetry")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	items := make([]models.OutboxItem, 0, limit)
	for rows.Next() {
		var (
			item          models.OutboxItem
			clientEventID sql.NullString
			payload       string
			lastError     sql.NullString
		)
		if err = rows.Scan(&item.ID, &clientEventID, &payload, &item.CreatedAt, &item.Attempts, &lastError); err != nil {
			log.Err(err).Str("func", "outboxRepository.Pending").Msg("failed to scan outbox row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if err = json.Unmarshal([]byte(payload), &item.Submission); err != nil {
			log.Err(err).Str("func", "outboxRepository.Pending").Int64("id", item.ID).Msg("corrupt outbox payload")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		item.ClientEventID = clientEventID.String
		item.LastError = nullStringPtr(lastError)

		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return items, nil
}

func (o *outboxRepository) Delete(ctx context.Context, ids ...int64) error {
	log := logger.FromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	tx, err := o.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, deleteOutboxItem)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPreparingStatement, err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err = stmt.ExecContext(ctx, id); err != nil {
			log.Err(err).Str("func", "outboxRepository.Delete").Int64("id", id).Msg("failed to delete outbox item")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

func (o *outboxRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	if _, err := o.DB.ExecContext(ctx, markOutboxItemFailed, reason, id); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "outboxRepository.MarkFailed").Int64("id", id).Msg("failed to mark outbox item")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (o *outboxRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := o.DB.QueryRowContext(ctx, countOutbox).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return count, nil
}
