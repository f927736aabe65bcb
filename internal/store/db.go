package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
)

const (
	driverName = "duckdb"
	dbFilename = "transfer-agent.duckdb"
	memoryDSN  = ":memory:"
)

// QueryInterceptor is the subset of *sql.DB the stores need.
type QueryInterceptor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewDB opens the DuckDB database. path is either ":memory:" or a folder
// where the database file is created.
func NewDB(path string) (*sql.DB, error) {
	dsn := ""
	if path != memoryDSN && path != "" {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data folder: %w", err)
		}
		dsn = filepath.Join(path, dbFilename)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to duckdb: %w", err)
	}
	return db, nil
}
