package store

import (
	"time"

	"github.com/MKhiriev/go-field-keeper/models"
	sq "github.com/Masterminds/squirrel"
)

const (
	credentialColumns = `actor_id, project_id, username, password_digest, display_name, phone, active, created_at, updated_at`

	createCredential = `INSERT INTO credentials (actor_id, project_id, username, password_digest, display_name, phone, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at;`

	findCredentialByUsername = `SELECT ` + credentialColumns + `
		FROM credentials
		WHERE username = $1;`

	findCredentialByActorID = `SELECT ` + credentialColumns + `
		FROM credentials
		WHERE actor_id = $1;`

	updatePasswordDigest = `UPDATE credentials
		SET password_digest = $2, updated_at = now()
		WHERE actor_id = $1;`

	setCredentialActive = `UPDATE credentials
		SET active = $2, updated_at = now()
		WHERE actor_id = $1;`

	updateCredentialPhone = `UPDATE credentials
		SET phone = $2, updated_at = now()
		WHERE actor_id = $1;`
)

const (
	recordLoginAttempt = `INSERT INTO login_attempts (username, ip, succeeded, created_at)
		VALUES ($1, $2, $3, $4);`

	countOriginFailures = `SELECT COUNT(*)
		FROM login_attempts
		WHERE ip = $1 AND NOT succeeded AND created_at >= $2;`
)

const (
	findActiveOriginLockout = `SELECT id, ip, username, locked_at, locked_until
		FROM origin_lockouts
		WHERE ip = $1 AND locked_until > $2
		ORDER BY locked_until DESC
		LIMIT 1;`

	recordOriginLockout = `INSERT INTO origin_lockouts (ip, username, locked_at, locked_until)
		VALUES ($1, $2, $3, $4)
		RETURNING id;`
)

const (
	// lockCredentialRow serializes session admission per actor.
	lockCredentialRow = `SELECT actor_id FROM credentials WHERE actor_id = $1 FOR UPDATE;`

	insertSession = `INSERT INTO sessions (token, actor_id, created_at, expires_at, ip, user_agent, device_id, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;`

	// evictSurplusSessions keeps the newest $3 live sessions of the actor.
	evictSurplusSessions = `UPDATE sessions
		SET expires_at = $2
		WHERE id IN (
			SELECT id FROM sessions
			WHERE actor_id = $1 AND (expires_at IS NULL OR expires_at > $2)
			ORDER BY created_at DESC, id DESC
			OFFSET $3
		);`

	findSessionByToken = `SELECT s.id, s.token, s.actor_id, c.project_id, s.created_at, s.expires_at, s.ip, s.user_agent, s.device_id, s.comments
		FROM sessions s
		JOIN credentials c ON c.actor_id = s.actor_id
		WHERE s.token = $1;`

	revokeSessionToken = `UPDATE sessions
		SET expires_at = $3
		WHERE token = $1 AND actor_id = $2 AND (expires_at IS NULL OR expires_at > $3);`

	revokeActorSessions = `UPDATE sessions
		SET expires_at = $2
		WHERE actor_id = $1 AND (expires_at IS NULL OR expires_at > $2);`

	revokeOtherActorSessions = `UPDATE sessions
		SET expires_at = $2
		WHERE actor_id = $1 AND (expires_at IS NULL OR expires_at > $2) AND token <> $3;`

	countLiveSessions = `SELECT COUNT(*) FROM sessions WHERE expires_at IS NULL OR expires_at > $1;`
)

const (
	telemetryInsertPrefix = `INSERT INTO telemetry (
			actor_id, device_id, collect_version, device_date_time, client_event_id, event,
			location_lat, location_lng, location_altitude, location_accuracy, location_speed, location_bearing, location_provider,
			received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	telemetryUpdateSet = `
		collect_version = EXCLUDED.collect_version,
		event = EXCLUDED.event,
		location_lat = EXCLUDED.location_lat,
		location_lng = EXCLUDED.location_lng,
		location_altitude = EXCLUDED.location_altitude,
		location_accuracy = EXCLUDED.location_accuracy,
		location_speed = EXCLUDED.location_speed,
		location_bearing = EXCLUDED.location_bearing,
		location_provider = EXCLUDED.location_provider,
		received_at = EXCLUDED.received_at`

	upsertTelemetryByEvent = telemetryInsertPrefix + `
		ON CONFLICT (actor_id, device_id, client_event_id) WHERE client_event_id IS NOT NULL
		DO UPDATE SET device_date_time = EXCLUDED.device_date_time,` + telemetryUpdateSet + `
		RETURNING id, received_at;`

	upsertTelemetryByDeviceTime = telemetryInsertPrefix + `
		ON CONFLICT (actor_id, device_id, device_date_time) WHERE client_event_id IS NULL
		DO UPDATE SET` + telemetryUpdateSet + `
		RETURNING id, received_at;`
)

const (
	selectSettings = `SELECT key_name, key_value FROM settings;`

	upsertSetting = `INSERT INTO settings (key_name, key_value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key_name) DO UPDATE SET key_value = EXCLUDED.key_value, updated_at = now();`

	insertAudit = `INSERT INTO audits (actor_id, action, subject, details, logged_at)
		VALUES ($1, $2, $3, $4, $5);`
)

// liveSession matches sessions that have not expired at now.
func liveSession(alias string, now time.Time) sq.Sqlizer {
	return sq.Or{
		sq.Eq{alias + "expires_at": nil},
		sq.Gt{alias + "expires_at": now},
	}
}

// buildLockStatusQuery aggregates failures for a username, narrowed to one
// origin when it is known.
func buildLockStatusQuery(username string, origin *string, since time.Time) (string, []any, error) {
	query := psql.
		Select().
		Column(sq.Expr("COUNT(*) FILTER (WHERE created_at >= ?)", since)).
		Column("MAX(created_at)").
		From("login_attempts").
		Where(sq.Eq{"username": username}).
		Where("NOT succeeded")

	if origin != nil {
		query = query.Where(sq.Eq{"ip": *origin})
	}

	return query.ToSql()
}

func buildDeleteFailuresQuery(username string, origin *string) (string, []any, error) {
	query := psql.
		Delete("login_attempts").
		Where(sq.Eq{"username": username}).
		Where("NOT succeeded")

	if origin != nil {
		query = query.Where(sq.Eq{"ip": *origin})
	}

	return query.ToSql()
}

// buildDeleteLockoutsQuery targets the origin when given, otherwise every
// lock that was triggered while failing against username.
func buildDeleteLockoutsQuery(username string, origin *string) (string, []any, error) {
	query := psql.Delete("origin_lockouts")

	if origin != nil {
		query = query.Where(sq.Eq{"ip": *origin})
	} else {
		query = query.Where(sq.Eq{"username": username})
	}

	return query.ToSql()
}

func buildListSessionsQuery(filter models.SessionFilter, page models.Page, now time.Time) (string, []any, error) {
	page = page.Normalize()

	query := psql.
		Select(
			"s.id", "s.token", "s.actor_id", "c.project_id", "s.created_at", "s.expires_at",
			"s.ip", "s.user_agent", "s.device_id", "s.comments",
			"COUNT(*) OVER() AS total",
		).
		From("sessions s").
		Join("credentials c ON c.actor_id = s.actor_id")

	if filter.ProjectID != nil {
		query = query.Where(sq.Eq{"c.project_id": *filter.ProjectID})
	}
	if filter.ActorID != nil {
		query = query.Where(sq.Eq{"s.actor_id": *filter.ActorID})
	}
	if filter.DeviceID != nil {
		query = query.Where(sq.Eq{"s.device_id": *filter.DeviceID})
	}
	if filter.Active != nil {
		if *filter.Active {
			query = query.Where(liveSession("s.", now))
		} else {
			query = query.Where(sq.LtOrEq{"s.expires_at": now})
		}
	}

	return query.
		OrderBy("s.created_at DESC", "s.id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
}

func buildListTelemetryQuery(filter models.TelemetryFilter, page models.Page) (string, []any, error) {
	page = page.Normalize()

	query := psql.
		Select(
			"t.id", "t.actor_id", "c.project_id", "t.device_id", "t.collect_version", "t.device_date_time",
			"t.client_event_id", "t.event",
			"t.location_lat", "t.location_lng", "t.location_altitude", "t.location_accuracy",
			"t.location_speed", "t.location_bearing", "t.location_provider",
			"t.received_at",
			"COUNT(*) OVER() AS total",
		).
		From("telemetry t").
		Join("credentials c ON c.actor_id = t.actor_id")

	if filter.ProjectID != nil {
		query = query.Where(sq.Eq{"c.project_id": *filter.ProjectID})
	}
	if filter.DeviceID != nil {
		query = query.Where(sq.Eq{"t.device_id": *filter.DeviceID})
	}
	if filter.ActorID != nil {
		query = query.Where(sq.Eq{"t.actor_id": *filter.ActorID})
	}
	if filter.DateFrom != nil {
		query = query.Where(sq.GtOrEq{"t.received_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		query = query.Where(sq.LtOrEq{"t.received_at": *filter.DateTo})
	}

	return query.
		OrderBy("t.received_at DESC", "t.id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
}
