package store

// Form queries
const (
	queryUpsertForm = `
		INSERT INTO forms (id, name, source, files, bytes, last_pulled_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			source = EXCLUDED.source,
			files = EXCLUDED.files,
			bytes = EXCLUDED.bytes,
			last_pulled_at = EXCLUDED.last_pulled_at,
			updated_at = now()`
)

// Transfer queries
const (
	queryInsertTransfer = `
		INSERT INTO transfers (id, source, form_id, state, total, started_at)
		VALUES (?, ?, ?, ?, 0, ?)`

	queryCompleteTransfer = `
		UPDATE transfers SET
			state = ?,
			total = ?,
			succeeded = ?,
			failed = ?,
			errors = ?,
			completed_at = ?
		WHERE id = ?`
)
