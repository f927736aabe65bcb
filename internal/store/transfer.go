package store

import (
	"context"
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"

	"github.com/kubev2v/transfer-agent/internal/models"
	srvErrors "github.com/kubev2v/transfer-agent/pkg/errors"
)

// TransferStore keeps the history of bulk transfers. Rows are informational:
// a transfer interrupted by a restart stays "running" and is never resumed.
type TransferStore struct {
	db QueryInterceptor
}

func NewTransferStore(db QueryInterceptor) *TransferStore {
	return &TransferStore{db: db}
}

func (s *TransferStore) Create(ctx context.Context, t models.Transfer) error {
	_, err := s.db.ExecContext(ctx, queryInsertTransfer, t.ID, t.Source, t.FormID, t.State.Value(), t.StartedAt)
	return err
}

// Complete records the final state and counters of t.
func (s *TransferStore) Complete(ctx context.Context, t models.Transfer) error {
	errs, err := json.Marshal(t.Errors)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, queryCompleteTransfer,
		t.State.Value(), t.Total, t.Succeeded, t.Failed, string(errs), t.CompletedAt, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return srvErrors.NewTransferNotFoundError(t.ID)
	}
	return nil
}

func (s *TransferStore) Get(ctx context.Context, id string) (*models.Transfer, error) {
	transfers, err := s.list(ctx, sq.Eq{"id": id}, 0)
	if err != nil {
		return nil, err
	}
	if len(transfers) == 0 {
		return nil, srvErrors.NewTransferNotFoundError(id)
	}
	return &transfers[0], nil
}

// List returns the most recent transfers first.
func (s *TransferStore) List(ctx context.Context, limit uint64) ([]models.Transfer, error) {
	return s.list(ctx, nil, limit)
}

func (s *TransferStore) list(ctx context.Context, where sq.Sqlizer, limit uint64) ([]models.Transfer, error) {
	builder := sq.Select("id", "source", "form_id", "state", "total", "succeeded", "failed", "errors", "started_at", "completed_at").
		From("transfers").
		OrderBy("started_at DESC")
	if where != nil {
		builder = builder.Where(where)
	}
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		var (
			t         models.Transfer
			formID    sql.NullString
			state     string
			errs      sql.NullString
			completed sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.Source, &formID, &state, &t.Total, &t.Succeeded, &t.Failed, &errs, &t.StartedAt, &completed); err != nil {
			return nil, err
		}
		t.FormID = formID.String
		t.State = models.TransferState(state)
		if errs.Valid && errs.String != "" {
			if err := json.Unmarshal([]byte(errs.String), &t.Errors); err != nil {
				return nil, err
			}
		}
		if completed.Valid {
			t.CompletedAt = &completed.Time
		}
		transfers = append(transfers, t)
	}

	return transfers, rows.Err()
}
