package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/domain"
	"github.com/spraicheux/offerflow/internal/platform/logger"
	"github.com/spraicheux/offerflow/internal/store"
)

// PostgresSubmissionStore implements the store.SubmissionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSubmissionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSubmissionStore creates a new PostgreSQL implementation of the
// SubmissionStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresSubmissionStore(db store.DBTX, logger *slog.Logger) *PostgresSubmissionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSubmissionStore{
		db:     db,
		logger: logger.With(slog.String("component", "submission_store")),
	}
}

// Ensure PostgresSubmissionStore implements store.SubmissionStore interface
var _ store.SubmissionStore = (*PostgresSubmissionStore)(nil)

// Create implements store.SubmissionStore.Create
// It saves a new submission to the database, handling domain validation.
// Returns store.ErrDuplicateSubmission when a submission with the same
// source channel and source message ID already exists.
func (s *PostgresSubmissionStore) Create(ctx context.Context, submission *domain.Submission) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := submission.Validate(); err != nil {
		log.Warn("submission validation failed during create",
			slog.String("error", err.Error()),
			slog.String("submission_id", submission.ID.String()))
		return err
	}

	attachments, err := json.Marshal(submission.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	query := `
		INSERT INTO submissions (
			id, source_channel, source_message_id, source_filename,
			supplier_email, supplier_name, text_body, attachments,
			status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		submission.ID,
		submission.SourceChannel,
		submission.SourceMessageID,
		submission.SourceFilename,
		submission.SupplierEmail,
		submission.SupplierName,
		submission.TextBody,
		attachments,
		submission.Status,
		submission.CreatedAt,
		submission.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate submission",
				slog.String("submission_id", submission.ID.String()),
				slog.String("source_channel", submission.SourceChannel),
				slog.String("source_message_id", submission.SourceMessageID))
			return fmt.Errorf("%w: message %s on channel %s already ingested",
				store.ErrDuplicateSubmission, submission.SourceMessageID, submission.SourceChannel)
		}

		log.Error("failed to create submission",
			slog.String("error", err.Error()),
			slog.String("submission_id", submission.ID.String()))
		return MapError(err)
	}

	log.Info("submission created successfully",
		slog.String("submission_id", submission.ID.String()),
		slog.String("source_channel", submission.SourceChannel),
		slog.String("status", string(submission.Status)))
	return nil
}

// GetByID implements store.SubmissionStore.GetByID
// Returns store.ErrSubmissionNotFound if the submission does not exist.
func (s *PostgresSubmissionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving submission by ID", slog.String("submission_id", id.String()))

	query := `
		SELECT id, source_channel, source_message_id, source_filename,
		       supplier_email, supplier_name, text_body, attachments,
		       status, created_at, updated_at
		FROM submissions
		WHERE id = $1
	`

	var submission domain.Submission
	var status string
	var attachments []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&submission.ID,
		&submission.SourceChannel,
		&submission.SourceMessageID,
		&submission.SourceFilename,
		&submission.SupplierEmail,
		&submission.SupplierName,
		&submission.TextBody,
		&attachments,
		&status,
		&submission.CreatedAt,
		&submission.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("submission not found", slog.String("submission_id", id.String()))
			return nil, store.ErrSubmissionNotFound
		}
		log.Error("failed to get submission by ID",
			slog.String("error", err.Error()),
			slog.String("submission_id", id.String()))
		return nil, MapError(err)
	}

	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &submission.Attachments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
		}
	}

	submission.Status = domain.SubmissionStatus(status)

	log.Debug("submission retrieved successfully",
		slog.String("submission_id", id.String()),
		slog.String("status", string(submission.Status)))
	return &submission, nil
}

// Update implements store.SubmissionStore.Update
// Returns store.ErrSubmissionNotFound if the submission does not exist.
func (s *PostgresSubmissionStore) Update(ctx context.Context, submission *domain.Submission) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := submission.Validate(); err != nil {
		log.Warn("submission validation failed during update",
			slog.String("error", err.Error()),
			slog.String("submission_id", submission.ID.String()))
		return err
	}

	attachments, err := json.Marshal(submission.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	submission.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE submissions
		SET supplier_email = $1, supplier_name = $2, text_body = $3,
		    attachments = $4, status = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		submission.SupplierEmail,
		submission.SupplierName,
		submission.TextBody,
		attachments,
		submission.Status,
		submission.UpdatedAt,
		submission.ID,
	)
	if err != nil {
		log.Error("failed to update submission",
			slog.String("error", err.Error()),
			slog.String("submission_id", submission.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		log.Debug("submission not found for update",
			slog.String("submission_id", submission.ID.String()))
		return store.ErrSubmissionNotFound
	}

	log.Info("submission updated successfully",
		slog.String("submission_id", submission.ID.String()))
	return nil
}

// UpdateStatus implements store.SubmissionStore.UpdateStatus
// Returns store.ErrSubmissionNotFound if the submission does not exist.
func (s *PostgresSubmissionStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("updating submission status",
		slog.String("submission_id", id.String()),
		slog.String("status", string(status)))

	// Validate the status value before touching the database
	probe := &domain.Submission{}
	if err := probe.UpdateStatus(status); err != nil {
		log.Warn("invalid submission status",
			slog.String("submission_id", id.String()),
			slog.String("status", string(status)))
		return err
	}

	query := `
		UPDATE submissions
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update submission status",
			slog.String("error", err.Error()),
			slog.String("submission_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		log.Debug("submission not found for status update",
			slog.String("submission_id", id.String()))
		return store.ErrSubmissionNotFound
	}

	log.Info("submission status updated successfully",
		slog.String("submission_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// FindByStatus implements store.SubmissionStore.FindByStatus
func (s *PostgresSubmissionStore) FindByStatus(ctx context.Context, status domain.SubmissionStatus, limit, offset int) ([]*domain.Submission, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, source_channel, source_message_id, source_filename,
		       supplier_email, supplier_name, text_body, attachments,
		       status, created_at, updated_at
		FROM submissions
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, status, limit, offset)
	if err != nil {
		log.Error("failed to query submissions by status",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var submissions []*domain.Submission
	for rows.Next() {
		var submission domain.Submission
		var rowStatus string
		var attachments []byte

		if err := rows.Scan(
			&submission.ID,
			&submission.SourceChannel,
			&submission.SourceMessageID,
			&submission.SourceFilename,
			&submission.SupplierEmail,
			&submission.SupplierName,
			&submission.TextBody,
			&attachments,
			&rowStatus,
			&submission.CreatedAt,
			&submission.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}

		if len(attachments) > 0 {
			if err := json.Unmarshal(attachments, &submission.Attachments); err != nil {
				return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
			}
		}
		submission.Status = domain.SubmissionStatus(rowStatus)
		submissions = append(submissions, &submission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}

	return submissions, nil
}

// WithTx implements store.SubmissionStore.WithTx
// It returns a new SubmissionStore that uses the provided transaction.
func (s *PostgresSubmissionStore) WithTx(tx *sql.Tx) store.SubmissionStore {
	return &PostgresSubmissionStore{
		db:     tx,
		logger: s.logger,
	}
}
