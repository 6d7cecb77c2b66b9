package service

import (
	"database/sql"

	"github.com/spraicheux/offerflow/internal/store"
)

// SubmissionRepositoryAdapter adapts a store.SubmissionStore to the service
// layer's SubmissionRepository, carrying the *sql.DB the transaction helper
// needs alongside the store.
type SubmissionRepositoryAdapter struct {
	store.SubmissionStore
	db *sql.DB
}

// NewSubmissionRepositoryAdapter creates an adapter that implements
// SubmissionRepository by delegating to a store.SubmissionStore.
func NewSubmissionRepositoryAdapter(
	submissionStore store.SubmissionStore,
	db *sql.DB,
) *SubmissionRepositoryAdapter {
	return &SubmissionRepositoryAdapter{
		SubmissionStore: submissionStore,
		db:              db,
	}
}

// WithTx returns a new adapter bound to the provided transaction.
func (a *SubmissionRepositoryAdapter) WithTx(tx *sql.Tx) SubmissionRepository {
	return &SubmissionRepositoryAdapter{
		SubmissionStore: a.SubmissionStore.WithTx(tx),
		db:              a.db,
	}
}

// DB returns the underlying database connection.
func (a *SubmissionRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// Verify that SubmissionRepositoryAdapter implements service.SubmissionRepository
var _ SubmissionRepository = (*SubmissionRepositoryAdapter)(nil)
