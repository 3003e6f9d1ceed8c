package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/models"
)

// telemetryRepository stores device telemetry. Rows are keyed by
// (actor, device, client event id) for events and by
// (actor, device, device time) for bare pings; a repeated key overwrites.
type telemetryRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewTelemetryRepository(db *DB, logger *logger.Logger) TelemetryRepository {
	logger.Debug().Msg("creating telemetry repository")
	return &telemetryRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertBatch writes all records in a single transaction. Either every record
// is stored or none is.
func (r *telemetryRepository) UpsertBatch(ctx context.Context, records []models.TelemetryRecord) ([]models.TelemetryRecord, error) {
	log := logger.FromContext(ctx)

	if len(records) == 0 {
		return []models.TelemetryRecord{}, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "*telemetryRepository.UpsertBatch").
			Int("count", len(records)).
			Msg("failed to begin transaction")
		return nil, r.db.classify(fmt.Errorf("%w: %w", ErrBeginningTransaction, err))
	}
	defer tx.Rollback()

	stored := make([]models.TelemetryRecord, 0, len(records))
	for idx, record := range records {
		query := upsertTelemetryByDeviceTime
		if record.ClientEventID != nil {
			query = upsertTelemetryByEvent
		}

		err = tx.QueryRowContext(ctx, query, telemetryArgs(record)...).Scan(&record.ID, &record.ReceivedAt)
		if err != nil {
			log.Err(err).
				Str("func", "*telemetryRepository.UpsertBatch").
				Int("iteration", idx+1).
				Int("total", len(records)).
				Str("device_id", record.DeviceID).
				Msg("failed to upsert telemetry record")
			return nil, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
		}

		stored = append(stored, record)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "*telemetryRepository.UpsertBatch").
			Int("count", len(records)).
			Msg("failed to commit transaction")
		return nil, r.db.classify(fmt.Errorf("%w: %w", ErrCommitingTransaction, err))
	}

	return stored, nil
}

func telemetryArgs(record models.TelemetryRecord) []any {
	var event any
	if len(record.Event) > 0 {
		event = string(record.Event)
	}

	var (
		lat, lng, altitude, accuracy, speed, bearing *float64
		provider                                     *string
	)
	if loc := record.Location; loc != nil {
		lat = loc.Latitude.Float64Ptr()
		lng = loc.Longitude.Float64Ptr()
		altitude = loc.Altitude.Float64Ptr()
		accuracy = loc.Accuracy.Float64Ptr()
		speed = loc.Speed.Float64Ptr()
		bearing = loc.Bearing.Float64Ptr()
		provider = loc.Provider
	}

	return []any{
		record.ActorID,
		record.DeviceID,
		record.CollectVersion,
		record.DeviceDateTime,
		record.ClientEventID,
		event,
		lat, lng, altitude, accuracy, speed, bearing, provider,
		record.ReceivedAt,
	}
}

// List returns one page of telemetry, newest receipt first, together with the
// number of rows matching filter.
func (r *telemetryRepository) List(ctx context.Context, filter models.TelemetryFilter, page models.Page) ([]models.TelemetryRecord, int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListTelemetryQuery(filter, page)
	if err != nil {
		log.Err(err).Str("func", "*telemetryRepository.List").Msg("failed to create query")
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*telemetryRepository.List").Msg("failed to execute query")
		return nil, 0, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	var (
		records = make([]models.TelemetryRecord, 0, page.Normalize().Limit)
		total   int64
	)
	for rows.Next() {
		var (
			record        models.TelemetryRecord
			clientEventID sql.NullString
			event         []byte
			lat, lng      sql.NullFloat64
			altitude      sql.NullFloat64
			accuracy      sql.NullFloat64
			speed         sql.NullFloat64
			bearing       sql.NullFloat64
			provider      sql.NullString
		)

		scanErr := rows.Scan(
			&record.ID,
			&record.ActorID,
			&record.ProjectID,
			&record.DeviceID,
			&record.CollectVersion,
			&record.DeviceDateTime,
			&clientEventID,
			&event,
			&lat, &lng, &altitude, &accuracy, &speed, &bearing, &provider,
			&record.ReceivedAt,
			&total,
		)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "*telemetryRepository.List").Msg("failed to scan telemetry row")
			return nil, 0, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		record.ClientEventID = nullStringPtr(clientEventID)
		if len(event) > 0 {
			record.Event = event
		}
		if lat.Valid && lng.Valid {
			record.Location = &models.Location{
				Latitude:  models.NumberFromFloat64Ptr(&lat.Float64),
				Longitude: models.NumberFromFloat64Ptr(&lng.Float64),
				Altitude:  nullNumber(altitude),
				Accuracy:  nullNumber(accuracy),
				Speed:     nullNumber(speed),
				Bearing:   nullNumber(bearing),
				Provider:  nullStringPtr(provider),
			}
		}

		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "*telemetryRepository.List").Msg("error occurred during rows iteration")
		return nil, 0, r.db.classify(fmt.Errorf("%w: %w", ErrScanningRows, err))
	}

	return records, total, nil
}

func nullNumber(f sql.NullFloat64) *models.Number {
	if !f.Valid {
		return nil
	}
	return models.NumberFromFloat64Ptr(&f.Float64)
}
