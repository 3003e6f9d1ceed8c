// Package migrations embeds the schemas of the field-keeper server
// (PostgreSQL) and of the device agent (SQLite) and applies them with goose.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedMigrations embed.FS

//go:embed agent/*.sql
var embedAgentMigrations embed.FS

var errNilDB = errors.New("db is nil")

// Migrate applies every pending Up migration of the server schema.
func Migrate(db *sql.DB) error {
	return up(db, embedMigrations, "pgx", ".")
}

// MigrateAgent applies the device agent's local SQLite schema.
func MigrateAgent(db *sql.DB) error {
	return up(db, embedAgentMigrations, "sqlite3", "agent")
}

// Rollback reverts the most recent server migration.
func Rollback(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migration error: %w", errNilDB)
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Down(db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

func up(db *sql.DB, fsys fs.FS, dialect, dir string) error {
	if db == nil {
		return fmt.Errorf("migration error: %w", errNilDB)
	}

	goose.SetBaseFS(fsys)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
