package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/spraicheux/offerflow/internal/api/shared"
	"github.com/spraicheux/offerflow/internal/domain"
	"github.com/spraicheux/offerflow/internal/platform/logger"
	"github.com/spraicheux/offerflow/internal/platform/redis"
	"github.com/spraicheux/offerflow/internal/service"
)

// jobStatusQueued is the cache status written when a submission is accepted.
const jobStatusQueued = "queued"

// IngestHandler handles offer document ingestion requests.
type IngestHandler struct {
	ingestService service.IngestService
	resultCache   redis.ResultCache
	validator     *validator.Validate
}

// NewIngestHandler creates a new IngestHandler with the given dependencies.
func NewIngestHandler(
	ingestService service.IngestService,
	resultCache redis.ResultCache,
) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		resultCache:   resultCache,
		validator:     validator.New(),
	}
}

// Ingest handles the POST /api/ingest endpoint. It persists the submission,
// schedules background extraction, and immediately returns 202 Accepted with
// a job ID the client can poll on the results endpoint.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), nil)

	var req IngestRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	attachments := make([]domain.Attachment, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		attachments = append(attachments, domain.Attachment{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			URL:         att.URL,
			Data:        att.Data,
		})
	}

	submission, err := domain.NewSubmission(
		req.SourceChannel,
		req.SourceMessageID,
		req.SourceFilename,
		req.SupplierEmail,
		req.SupplierName,
		req.TextBody,
		attachments,
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid submission data", err)
		return
	}

	created, err := h.ingestService.CreateSubmissionAndEnqueueJob(r.Context(), submission)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateSubmission) {
			shared.RespondWithError(w, r, http.StatusConflict, "Submission already exists")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to create submission", err)
		return
	}

	// Seed the cache so the job is pollable before the worker picks it up.
	// Processing continues even if the cache write fails.
	if err := h.resultCache.SetStatus(r.Context(), created.ID.String(), jobStatusQueued); err != nil {
		log.Warn("failed to seed job status cache",
			"error", err,
			"job_id", created.ID)
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, IngestResponse{
		JobID:  created.ID,
		Status: jobStatusQueued,
	})
}
