package store

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// loggingInterceptor logs every query at debug level.
type loggingInterceptor struct {
	db QueryInterceptor
}

func newLoggingInterceptor(db QueryInterceptor) *loggingInterceptor {
	return &loggingInterceptor{db: db}
}

func (l *loggingInterceptor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := l.db.ExecContext(ctx, query, args...)
	l.log("exec", query, args, start, err)
	return res, err
}

func (l *loggingInterceptor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := l.db.QueryContext(ctx, query, args...)
	l.log("query", query, args, start, err)
	return rows, err
}

func (l *loggingInterceptor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := l.db.QueryRowContext(ctx, query, args...)
	l.log("query_row", query, args, start, row.Err())
	return row
}

func (l *loggingInterceptor) log(op, query string, args []any, start time.Time, err error) {
	logger := zap.S().Named("store")
	if err != nil {
		logger.Debugw(op+" failed", "query", query, "args", args, "duration", time.Since(start), "error", err)
		return
	}
	logger.Debugw(op, "query", query, "args", args, "duration", time.Since(start))
}
