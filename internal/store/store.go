package store

import "database/sql"

// Store provides access to all storage repositories.
type Store struct {
	db        *sql.DB
	forms     *FormStore
	transfers *TransferStore
}

func NewStore(db *sql.DB) *Store {
	qi := newLoggingInterceptor(db)
	return &Store{
		db:        db,
		forms:     NewFormStore(qi),
		transfers: NewTransferStore(qi),
	}
}

func (s *Store) Forms() *FormStore {
	return s.forms
}

func (s *Store) Transfers() *TransferStore {
	return s.transfers
}

func (s *Store) Close() error {
	return s.db.Close()
}
