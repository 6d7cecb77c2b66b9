package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/domain"
	"github.com/spraicheux/offerflow/internal/extraction"
	"github.com/spraicheux/offerflow/internal/platform/redis"
)

// Cache status values reported to the results endpoint. "done" is the
// terminal value polling clients wait for.
const (
	cacheStatusQueued     = "queued"
	cacheStatusProcessing = "processing"
	cacheStatusDone       = "done"
	cacheStatusFailed     = "failed"
)

// Common errors
var (
	ErrNilSubmissionService = errors.New("submission service cannot be nil")
	ErrNilExtractor         = errors.New("extractor cannot be nil")
	ErrNilOfferService      = errors.New("offer service cannot be nil")
	ErrNilDownloader        = errors.New("downloader cannot be nil")
	ErrNilResultCache       = errors.New("result cache cannot be nil")
	ErrNilLogger            = errors.New("logger cannot be nil")
	ErrEmptySubmissionID    = errors.New("submission ID cannot be empty")
	ErrNoDocuments          = errors.New("submission has no processable content")
)

// SubmissionService defines the submission operations the task needs
type SubmissionService interface {
	// GetSubmission retrieves a submission by its ID
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)

	// UpdateSubmissionStatus updates a submission's status
	UpdateSubmissionStatus(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus) error
}

// OfferService defines the offer persistence operations the task needs
type OfferService interface {
	// SaveOfferItems persists the extracted offer items for a submission
	SaveOfferItems(ctx context.Context, submissionID uuid.UUID, items []*domain.OfferItem) error
}

// Downloader resolves attachment content before extraction
type Downloader interface {
	Fetch(ctx context.Context, att domain.Attachment) ([]byte, error)
}

// offerExtractionPayload represents the serialized data stored in the task
type offerExtractionPayload struct {
	SubmissionID uuid.UUID `json:"submission_id"`
}

// OfferExtractionTask implements the Task interface for extracting
// structured offer data from a submission
type OfferExtractionTask struct {
	id           uuid.UUID
	submissionID uuid.UUID
	submissions  SubmissionService
	extractor    extraction.Extractor
	offers       OfferService
	downloader   Downloader
	cache        redis.ResultCache
	logger       *slog.Logger
	status       TaskStatus
}

// NewOfferExtractionTask creates a new offer extraction task
func NewOfferExtractionTask(
	submissionID uuid.UUID,
	submissions SubmissionService,
	extractor extraction.Extractor,
	offers OfferService,
	downloader Downloader,
	cache redis.ResultCache,
	logger *slog.Logger,
) (*OfferExtractionTask, error) {
	if submissions == nil {
		return nil, ErrNilSubmissionService
	}
	if extractor == nil {
		return nil, ErrNilExtractor
	}
	if offers == nil {
		return nil, ErrNilOfferService
	}
	if downloader == nil {
		return nil, ErrNilDownloader
	}
	if cache == nil {
		return nil, ErrNilResultCache
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if submissionID == uuid.Nil {
		return nil, ErrEmptySubmissionID
	}

	return &OfferExtractionTask{
		id:           uuid.New(),
		submissionID: submissionID,
		submissions:  submissions,
		extractor:    extractor,
		offers:       offers,
		downloader:   downloader,
		cache:        cache,
		logger:       logger.With("task_type", TaskTypeOfferExtraction, "submission_id", submissionID),
		status:       TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *OfferExtractionTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *OfferExtractionTask) Type() string {
	return TaskTypeOfferExtraction
}

// Payload returns the task data as a byte slice
func (t *OfferExtractionTask) Payload() []byte {
	payload := offerExtractionPayload{
		SubmissionID: t.submissionID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *OfferExtractionTask) Status() TaskStatus {
	return t.status
}

// Execute runs the offer extraction task: it loads the submission, resolves
// attachment content, extracts offer items from every document, enriches
// them with provenance and derived fields, persists them, and publishes the
// result for the polling endpoint.
func (t *OfferExtractionTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting offer extraction task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	jobID := t.submissionID.String()

	// 1. Retrieve the submission
	submission, err := t.submissions.GetSubmission(ctx, t.submissionID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve submission", "error", err)
		return fmt.Errorf("failed to retrieve submission: %w", err)
	}

	t.logger.Info("retrieved submission",
		"source_channel", submission.SourceChannel,
		"attachment_count", len(submission.Attachments))

	// 2. Mark the submission as processing, in the database and in the cache
	if err := t.submissions.UpdateSubmissionStatus(ctx, t.submissionID, domain.SubmissionStatusProcessing); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to update submission status to processing", "error", err)
		return fmt.Errorf("failed to update submission status to processing: %w", err)
	}
	if err := t.cache.SetStatus(ctx, jobID, cacheStatusProcessing); err != nil {
		t.logger.Warn("failed to publish processing status", "error", err)
	}

	// 3. Resolve the documents to extract from
	docs, attachmentFailures := t.resolveDocuments(ctx, submission)
	if len(docs) == 0 {
		t.failSubmission(ctx, jobID)
		t.status = TaskStatusFailed
		t.logger.Error("no processable documents in submission",
			"attachment_failures", attachmentFailures)
		return fmt.Errorf("%w: %s", ErrNoDocuments, jobID)
	}

	// 4. Extract offer items from each document
	var items []*domain.OfferItem
	extractionFailures := 0
	for _, doc := range docs {
		extracted, err := t.extractor.ExtractOffer(ctx, doc)
		if err != nil {
			extractionFailures++
			t.logger.Error("document extraction failed",
				"filename", doc.Filename,
				"error", err)
			continue
		}
		items = append(items, extracted...)
	}

	if len(items) == 0 {
		t.failSubmission(ctx, jobID)
		t.status = TaskStatusFailed
		t.logger.Error("extraction produced no offer items",
			"document_count", len(docs),
			"extraction_failures", extractionFailures)
		return fmt.Errorf("extraction produced no offer items for submission %s", jobID)
	}

	// 5. Enrich items with provenance and derived fields
	for _, item := range items {
		t.finalizeItem(item, submission, attachmentFailures > 0)
	}

	t.logger.Info("offer items extracted", "count", len(items))

	// 6. Persist the items
	if err := t.offers.SaveOfferItems(ctx, t.submissionID, items); err != nil {
		t.failSubmission(ctx, jobID)
		t.status = TaskStatusFailed
		t.logger.Error("failed to save offer items", "error", err)
		return fmt.Errorf("failed to save offer items: %w", err)
	}

	// 7. Publish the result for the polling endpoint
	resultJSON, err := json.Marshal(domain.OfferResponse{Data: items})
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to marshal offer result", "error", err)
		return fmt.Errorf("failed to marshal offer result: %w", err)
	}
	if err := t.cache.SetResult(ctx, jobID, resultJSON); err != nil {
		t.logger.Warn("failed to publish job result", "error", err)
	}
	if err := t.cache.SetStatus(ctx, jobID, cacheStatusDone); err != nil {
		t.logger.Warn("failed to publish done status", "error", err)
	}

	// 8. Record the final submission status
	finalStatus := domain.SubmissionStatusCompleted
	if attachmentFailures > 0 || extractionFailures > 0 {
		finalStatus = domain.SubmissionStatusCompletedWithErrors
	}
	if err := t.submissions.UpdateSubmissionStatus(ctx, t.submissionID, finalStatus); err != nil {
		// The items are already saved and published, so log and keep going
		t.logger.Error("failed to update submission final status",
			"error", err,
			"items_extracted", len(items))
	}

	t.status = TaskStatusCompleted
	t.logger.Info("offer extraction task completed",
		"items_extracted", len(items),
		"attachment_failures", attachmentFailures,
		"extraction_failures", extractionFailures)
	return nil
}

// resolveDocuments turns the submission's text body and attachments into
// extraction documents. Attachment download failures are counted rather
// than fatal so one broken link doesn't sink the whole submission.
func (t *OfferExtractionTask) resolveDocuments(ctx context.Context, submission *domain.Submission) ([]extraction.Document, int) {
	var docs []extraction.Document

	if submission.TextBody != "" {
		docs = append(docs, extraction.Document{
			ContentType: "text/plain",
			Text:        submission.TextBody,
		})
	}

	failures := 0
	for _, att := range submission.Attachments {
		data, err := t.downloader.Fetch(ctx, att)
		if err != nil {
			failures++
			t.logger.Error("failed to resolve attachment",
				"filename", att.Filename,
				"error", err)
			continue
		}

		docs = append(docs, extraction.Document{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Text:        string(data),
		})
	}

	return docs, failures
}

// finalizeItem stamps identity, provenance, and derived fields onto an
// extracted item before persistence.
func (t *OfferExtractionTask) finalizeItem(item *domain.OfferItem, submission *domain.Submission, attachmentFailed bool) {
	item.UID = uuid.New().String()
	item.SourceChannel = submission.SourceChannel
	item.SourceMessageID = submission.SourceMessageID
	item.SourceFilename = submission.SourceFilename
	item.ProcessingVersion = domain.ProcessingVersion
	item.DateReceived = submission.CreatedAt
	item.OfferDate = time.Now().UTC()

	// Submission-level supplier details win over nothing, but never
	// override what was read from the document itself
	if item.SupplierName == nil && submission.SupplierName != "" {
		name := submission.SupplierName
		item.SupplierName = &name
	}
	if item.SupplierEmail == nil && submission.SupplierEmail != "" {
		email := submission.SupplierEmail
		item.SupplierEmail = &email
	}

	if item.ProductKey == "" {
		brand := ""
		if item.Brand != nil {
			brand = *item.Brand
		}
		packaging := ""
		if item.Packaging != nil {
			packaging = *item.Packaging
		}
		item.ProductKey = domain.ProductKey(brand, item.ProductName, packaging)
	}

	item.DerivePricing()
	item.FlagMissingFields()
	if attachmentFailed {
		item.AddErrorFlag(domain.FlagAttachmentFailed)
	}
	item.ResolveReview()
}

// failSubmission records a terminal failure in both the database and the
// result cache. Errors here are logged, not returned, because the caller is
// already on a failure path.
func (t *OfferExtractionTask) failSubmission(ctx context.Context, jobID string) {
	if err := t.submissions.UpdateSubmissionStatus(ctx, t.submissionID, domain.SubmissionStatusFailed); err != nil {
		t.logger.Error("failed to update submission status to failed", "error", err)
	}
	if err := t.cache.SetStatus(ctx, jobID, cacheStatusFailed); err != nil {
		t.logger.Warn("failed to publish failed status", "error", err)
	}
}
