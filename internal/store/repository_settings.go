package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
)

type settingsRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewSettingsRepository(db *DB, logger *logger.Logger) SettingsRepository {
	logger.Debug().Msg("creating settings repository")
	return &settingsRepository{
		db:     db,
		logger: logger,
	}
}

// GetAll returns the raw stored values. Interpretation and fallbacks are the
// caller's concern.
func (r *settingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, selectSettings)
	if err != nil {
		log.Err(err).Str("func", "*settingsRepository.GetAll").Msg("failed to execute query")
		return nil, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err = rows.Scan(&key, &value); err != nil {
			log.Err(err).Str("func", "*settingsRepository.GetAll").Msg("failed to scan setting")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		values[key] = value
	}
	if err = rows.Err(); err != nil {
		return nil, r.db.classify(fmt.Errorf("%w: %w", ErrScanningRows, err))
	}

	return values, nil
}

// Upsert writes all values in one transaction, in key order.
func (r *settingsRepository) Upsert(ctx context.Context, values map[string]int) error {
	log := logger.FromContext(ctx)

	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*settingsRepository.Upsert").Msg("failed to begin transaction")
		return r.db.classify(fmt.Errorf("%w: %w", ErrBeginningTransaction, err))
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSetting)
	if err != nil {
		log.Err(err).Str("func", "*settingsRepository.Upsert").Msg("failed to prepare statement")
		return fmt.Errorf("%w: %w", ErrPreparingStatement, err)
	}
	defer stmt.Close()

	for _, key := range keys {
		if _, err = stmt.ExecContext(ctx, key, strconv.Itoa(values[key])); err != nil {
			log.Err(err).Str("func", "*settingsRepository.Upsert").Str("key", key).Msg("failed to upsert setting")
			return r.db.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*settingsRepository.Upsert").Msg("failed to commit transaction")
		return r.db.classify(fmt.Errorf("%w: %w", ErrCommitingTransaction, err))
	}

	return nil
}
