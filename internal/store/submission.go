package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/domain"
)

// SubmissionStore defines the interface for submission data persistence.
type SubmissionStore interface {
	// Create saves a new submission to the store.
	// It handles domain validation internally.
	// Returns ErrDuplicateSubmission when a submission with the same source
	// channel and source message ID already exists.
	Create(ctx context.Context, submission *domain.Submission) error

	// GetByID retrieves a submission by its unique ID.
	// Returns ErrSubmissionNotFound if the submission does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)

	// Update saves changes to an existing submission.
	// Returns ErrSubmissionNotFound if the submission does not exist.
	Update(ctx context.Context, submission *domain.Submission) error

	// UpdateStatus updates the status of an existing submission.
	// Returns ErrSubmissionNotFound if the submission does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus) error

	// FindByStatus retrieves submissions with the specified status,
	// newest first, with limit/offset pagination.
	FindByStatus(ctx context.Context, status domain.SubmissionStatus, limit, offset int) ([]*domain.Submission, error)

	// WithTx returns a new SubmissionStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) SubmissionStore
}

// OfferStore defines the interface for extracted offer item persistence.
type OfferStore interface {
	// CreateMany persists the offer items extracted from one submission.
	CreateMany(ctx context.Context, submissionID uuid.UUID, items []*domain.OfferItem) error

	// FindBySubmission retrieves the offer items extracted from a submission.
	// Returns an empty slice when extraction produced nothing yet.
	FindBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*domain.OfferItem, error)

	// WithTx returns a new OfferStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) OfferStore
}
