package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/domain"
	"github.com/spraicheux/offerflow/internal/events"
	"github.com/spraicheux/offerflow/internal/platform/metrics"
	"github.com/spraicheux/offerflow/internal/store"
	"github.com/spraicheux/offerflow/internal/task"
)

// SubmissionRepository defines the repository interface for the service
// layer, aligned with store.SubmissionStore.
type SubmissionRepository interface {
	// Create saves a new submission to the store
	Create(ctx context.Context, submission *domain.Submission) error

	// GetByID retrieves a submission by its unique ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)

	// UpdateStatus updates the status of an existing submission
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus) error

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) SubmissionRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// OfferRepository exposes offer item reads for the results endpoint.
type OfferRepository interface {
	// FindBySubmission retrieves the offer items extracted from a submission
	FindBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*domain.OfferItem, error)
}

// IngestService provides submission intake and lookup operations
type IngestService interface {
	// CreateSubmissionAndEnqueueJob persists a new submission and emits a
	// job request event for background extraction. Returns the created
	// submission; its ID is the job ID clients poll with.
	CreateSubmissionAndEnqueueJob(ctx context.Context, submission *domain.Submission) (*domain.Submission, error)

	// GetSubmission retrieves a submission by its ID
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)

	// UpdateSubmissionStatus updates a submission's status
	UpdateSubmissionStatus(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus) error

	// GetOfferItems retrieves the offer items extracted from a submission
	GetOfferItems(ctx context.Context, submissionID uuid.UUID) ([]*domain.OfferItem, error)
}

// Common sentinel errors for IngestService
var (
	// ErrSubmissionNotFound indicates that the submission does not exist
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrDuplicateSubmission indicates the source message was already ingested
	ErrDuplicateSubmission = errors.New("submission already ingested")
)

// IngestServiceError wraps errors from the ingest service with context.
type IngestServiceError struct {
	// Operation is the operation that failed (e.g., "create_submission")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for IngestServiceError.
func (e *IngestServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("ingest service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *IngestServiceError) Unwrap() error {
	return e.Err
}

// NewIngestServiceError creates a new IngestServiceError.
// It returns known sentinel errors directly without wrapping.
func NewIngestServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrSubmissionNotFound) || errors.Is(err, store.ErrSubmissionNotFound) {
		return ErrSubmissionNotFound
	}
	if errors.Is(err, ErrDuplicateSubmission) || errors.Is(err, store.ErrDuplicateSubmission) {
		return ErrDuplicateSubmission
	}

	return &IngestServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// ingestServiceImpl implements the IngestService interface
type ingestServiceImpl struct {
	submissionRepo SubmissionRepository
	offerRepo      OfferRepository
	eventEmitter   events.EventEmitter
	logger         *slog.Logger
}

// NewIngestService creates a new IngestService.
// It returns an error if any of the required dependencies are nil.
func NewIngestService(
	submissionRepo SubmissionRepository,
	offerRepo OfferRepository,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (IngestService, error) {
	if submissionRepo == nil {
		return nil, &IngestServiceError{
			Operation: "create_service",
			Message:   "submissionRepo cannot be nil",
		}
	}
	if offerRepo == nil {
		return nil, &IngestServiceError{
			Operation: "create_service",
			Message:   "offerRepo cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &IngestServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ingestServiceImpl{
		submissionRepo: submissionRepo,
		offerRepo:      offerRepo,
		eventEmitter:   eventEmitter,
		logger:         logger.With("component", "ingest_service"),
	}, nil
}

// CreateSubmissionAndEnqueueJob creates a new submission with pending status
// and emits an event for background processing. The database write runs in a
// transaction so a half-created submission never leaks out.
func (s *ingestServiceImpl) CreateSubmissionAndEnqueueJob(
	ctx context.Context,
	submission *domain.Submission,
) (*domain.Submission, error) {
	err := store.RunInTransaction(ctx, s.submissionRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.submissionRepo.WithTx(tx)

		if err := txRepo.Create(ctx, submission); err != nil {
			s.logger.Error("failed to create submission in transaction",
				"error", err,
				"submission_id", submission.ID,
				"source_channel", submission.SourceChannel)
			return NewIngestServiceError("create_submission", "failed to save submission to database", err)
		}
		return nil
	})
	if err != nil {
		// Error is already wrapped in the transaction
		return nil, err
	}

	s.logger.Info("submission created successfully with pending status",
		"submission_id", submission.ID,
		"source_channel", submission.SourceChannel)
	metrics.SubmissionsReceivedTotal.WithLabelValues(submission.SourceChannel).Inc()

	payload := struct {
		SubmissionID uuid.UUID `json:"submission_id"`
	}{
		SubmissionID: submission.ID,
	}

	event, err := events.NewJobRequestEvent(task.TaskTypeOfferExtraction, payload)
	if err != nil {
		s.logger.Error("failed to create offer extraction event",
			"error", err,
			"submission_id", submission.ID)
		return nil, NewIngestServiceError("create_submission", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit offer extraction event",
			"error", err,
			"submission_id", submission.ID,
			"event_id", event.ID)
		return nil, NewIngestServiceError("create_submission", "failed to emit event", err)
	}

	s.logger.Info("offer extraction event emitted successfully",
		"submission_id", submission.ID,
		"event_id", event.ID)

	return submission, nil
}

// GetSubmission retrieves a submission by its ID
func (s *ingestServiceImpl) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("failed to retrieve submission",
			"error", err,
			"submission_id", id)
		return nil, NewIngestServiceError("get_submission", "failed to retrieve submission", err)
	}

	s.logger.Debug("retrieved submission successfully",
		"submission_id", id,
		"status", submission.Status)

	return submission, nil
}

// UpdateSubmissionStatus updates a submission's status
func (s *ingestServiceImpl) UpdateSubmissionStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.SubmissionStatus,
) error {
	err := s.submissionRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, store.ErrSubmissionNotFound) {
			return ErrSubmissionNotFound
		}
		s.logger.Error("failed to update submission status",
			"error", err,
			"submission_id", id,
			"target_status", status)
		return NewIngestServiceError("update_submission_status",
			fmt.Sprintf("failed to update submission status to %s", status), err)
	}

	return nil
}

// GetOfferItems retrieves the offer items extracted from a submission
func (s *ingestServiceImpl) GetOfferItems(ctx context.Context, submissionID uuid.UUID) ([]*domain.OfferItem, error) {
	items, err := s.offerRepo.FindBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("failed to retrieve offer items",
			"error", err,
			"submission_id", submissionID)
		return nil, NewIngestServiceError("get_offer_items", "failed to retrieve offer items", err)
	}
	return items, nil
}
