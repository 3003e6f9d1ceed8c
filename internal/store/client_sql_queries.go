// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	enqueueOutboxItem = `
		INSERT INTO outbox (client_event_id, submission, created_at, attempts)
		VALUES (?, ?, ?, 0);`

	selectPendingOutbox = `
		SELECT id, client_event_id, submission, created_at, attempts, last_error
		FROM outbox
		ORDER BY id
		LIMIT ?;`

	deleteOutboxItem = `DELETE FROM outbox WHERE id = ?;`

	markOutboxItemFailed = `
		UPDATE outbox
		SET attempts = attempts + 1, last_error = ?
		WHERE id = ?;`

	countOutbox = `SELECT COUNT(*) FROM outbox;`
)

const (
	saveLocalSession = `
		INSERT INTO local_session (id, actor_id, project_id, token, expires_at, invalidated)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			actor_id    = excluded.actor_id,
			project_id  = excluded.project_id,
			token       = excluded.token,
			expires_at  = excluded.expires_at,
			invalidated = excluded.invalidated;`

	loadLocalSession = `
		SELECT actor_id, project_id, token, expires_at, invalidated
		FROM local_session
		WHERE id = 1;`

	invalidateLocalSession = `UPDATE local_session SET invalidated = 1 WHERE id = 1;`

	clearLocalSession = `DELETE FROM local_session;`
)
