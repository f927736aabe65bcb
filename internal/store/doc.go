// Package store implements the data access layer for the transfer-agent.
//
// This package provides persistent storage using DuckDB for the metadata of
// pulled forms and the history of transfers. Form files themselves live in
// the briefcase storage directory, not in the database.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│          FormStore             │         TransferStore          │
//	│              ▼                 │              ▼                 │
//	│            forms               │           transfers            │
//	├────────────────────────────────┴────────────────────────────────┤
//	│              loggingInterceptor (QueryInterceptor)              │
//	├─────────────────────────────────────────────────────────────────┤
//	│                      *sql.DB (duckdb-go)                        │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
// Tables created by migrations (internal/store/migrations):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  forms             │  One row per pulled form (files, bytes)     │
//	│  transfers         │  One row per import, completed at the end   │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Initialization Flow
//
//	db, err := store.NewDB(cfg.Storage.DataFolder)  // "" or ":memory:" → in-memory
//	migrations.Run(ctx, db)
//	st := store.NewStore(db)
//
// # FormStore
//
// Methods:
//   - Upsert(ctx, m) → error (INSERT ... ON CONFLICT (id) DO UPDATE)
//   - Get(ctx, id) → *models.FormMetadata, ResourceNotFoundError when missing
//   - List(ctx, opts...) → []models.FormMetadata ordered by id
//   - Count(ctx, opts...) → int
//
// List Options:
//
// List and Count use the functional options pattern. Each ListOption modifies
// the squirrel SelectBuilder:
//
//	forms, err := st.Forms().List(ctx,
//	    store.BySource("/sdcard/odk/forms"),
//	    store.WithLimit(20),
//	    store.WithOffset(40),
//	)
//
// Options:
//   - ByFormIDs(ids ...string)  SQL: WHERE id IN (...)
//   - BySource(source string)   SQL: WHERE source = ?
//   - WithLimit(limit uint64)   SQL: LIMIT limit
//   - WithOffset(offset uint64) SQL: OFFSET offset
//
// # TransferStore
//
// Methods:
//   - Create(ctx, t) → error, called when an import starts
//   - Complete(ctx, t) → error, records counts, errors (JSON) and completed_at
//   - Get(ctx, id) → *models.Transfer, ResourceNotFoundError when missing
//   - List(ctx, limit) → most recent transfers first
//
// Transfer rows are history only. A transfer still running when the agent
// stops is never resumed.
//
// # QueryInterceptor
//
// All database operations go through a QueryInterceptor that logs every
// query, its arguments and duration at debug level under the "store" logger.
package store
