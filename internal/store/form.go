package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/kubev2v/transfer-agent/internal/models"
	srvErrors "github.com/kubev2v/transfer-agent/pkg/errors"
)

// FormStore keeps the metadata of pulled forms.
type FormStore struct {
	db QueryInterceptor
}

func NewFormStore(db QueryInterceptor) *FormStore {
	return &FormStore{db: db}
}

// Upsert stores m, replacing the metadata of a form with the same id.
func (s *FormStore) Upsert(ctx context.Context, m models.FormMetadata) error {
	_, err := s.db.ExecContext(ctx, queryUpsertForm, m.ID, m.Name, m.Source, m.Files, m.Bytes, m.LastPulledAt)
	return err
}

func (s *FormStore) Get(ctx context.Context, id string) (*models.FormMetadata, error) {
	forms, err := s.List(ctx, ByFormIDs(id))
	if err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return nil, srvErrors.NewFormNotFoundError(id)
	}
	return &forms[0], nil
}

func (s *FormStore) List(ctx context.Context, opts ...ListOption) ([]models.FormMetadata, error) {
	builder := sq.Select("id", "name", "source", "files", "bytes", "last_pulled_at", "updated_at").
		From("forms").
		OrderBy("id")

	for _, opt := range opts {
		builder = opt(builder)
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

	var forms []models.FormMetadata
	for rows.Next() {
		var m models.FormMetadata
		var lastPulled sql.NullTime
		if err := rows.Scan(&m.ID, &m.Name, &m.Source, &m.Files, &m.Bytes, &lastPulled, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if lastPulled.Valid {
			m.LastPulledAt = lastPulled.Time
		}
		forms = append(forms, m)
	}

	return forms, rows.Err()
}

func (s *FormStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("forms")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByFormIDs(ids ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(ids) == 0 {
			return b
		}
		return b.Where(sq.Eq{"id": ids})
	}
}

func BySource(source string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if source == "" {
			return b
		}
		return b.Where(sq.Eq{"source": source})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}
