package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrCredentialNotFound is returned when no credential matches the
	// requested username or actor id.
	ErrCredentialNotFound = errors.New("credential was not found")

	// ErrUsernameTaken is returned when a credential insert violates the
	// unique username index.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrActorHasCredential is returned when the actor already owns a
	// credential.
	ErrActorHasCredential = errors.New("actor already has a credential")

	// ErrSessionNotFound is returned when a bearer token matches no session.
	ErrSessionNotFound = errors.New("session was not found")

	// ErrLocalSessionNotFound is returned by the device agent store when no
	// session has been saved.
	ErrLocalSessionNotFound = errors.New("local session not found")

	// ErrTemporarilyUnavailable marks failures that are safe to retry:
	// lost connections, serialization failures and deadlocks.
	ErrTemporarilyUnavailable = errors.New("datastore temporarily unavailable")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrPreparingStatement is returned when a SQL statement cannot be
	// prepared (e.g. syntax error or connection issue).
	ErrPreparingStatement = errors.New("failed to prepare statement")

	// ErrExecutingStatement is returned when executing a prepared DML
	// statement (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrMarshallingJSON is returned when a JSONB column value cannot be
	// encoded.
	ErrMarshallingJSON = errors.New("failed to marshal jsonb value")
)
