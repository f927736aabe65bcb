package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

type migration struct {
	version int
	name    string
	stmt    string
}

// migrations are applied in order; never edit an applied one, add a new version.
var migrations = []migration{
	{
		version: 1,
		name:    "create forms table",
		stmt: `CREATE TABLE IF NOT EXISTS forms (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			source VARCHAR NOT NULL,
			files INTEGER NOT NULL DEFAULT 0,
			bytes BIGINT NOT NULL DEFAULT 0,
			last_pulled_at TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT now()
		)`,
	},
	{
		version: 2,
		name:    "create transfers table",
		stmt: `CREATE TABLE IF NOT EXISTS transfers (
			id VARCHAR PRIMARY KEY,
			source VARCHAR NOT NULL,
			form_id VARCHAR,
			state VARCHAR NOT NULL,
			total INTEGER NOT NULL DEFAULT 0,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			errors VARCHAR,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP
		)`,
	},
}

const (
	queryCreateSchemaMigrations = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name VARCHAR NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT now()
	)`
	queryIsApplied     = `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`
	queryMarkAsApplied = `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`
)

// Run applies the migrations not yet recorded in schema_migrations.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, queryCreateSchemaMigrations); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, queryIsApplied, m.version).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := tx.ExecContext(ctx, m.stmt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, queryMarkAsApplied, m.version, m.name); err != nil {
		return err
	}

	zap.S().Named("migrations").Infow("migration applied", "version", m.version, "name", m.name)
	return tx.Commit()
}
