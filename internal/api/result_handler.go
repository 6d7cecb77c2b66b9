package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/api/shared"
	"github.com/spraicheux/offerflow/internal/domain"
	"github.com/spraicheux/offerflow/internal/platform/logger"
	"github.com/spraicheux/offerflow/internal/platform/redis"
	"github.com/spraicheux/offerflow/internal/service"
)

// Job statuses reported to polling clients.
const (
	jobStatusProcessing = "processing"
	jobStatusDone       = "done"
	jobStatusFailed     = "failed"
)

// ResultHandler handles result polling requests.
type ResultHandler struct {
	resultCache   redis.ResultCache
	ingestService service.IngestService
}

// NewResultHandler creates a new ResultHandler with the given dependencies.
func NewResultHandler(
	resultCache redis.ResultCache,
	ingestService service.IngestService,
) *ResultHandler {
	return &ResultHandler{
		resultCache:   resultCache,
		ingestService: ingestService,
	}
}

// GetResult handles the GET /api/results/{job_id} endpoint. It answers from
// the result cache when possible and falls back to the database when the
// cache entry has expired, so results stay retrievable past the cache TTL.
func (h *ResultHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	jobIDParam := chi.URLParam(r, "job_id")
	jobID, err := uuid.Parse(jobIDParam)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}

	status, err := h.resultCache.GetStatus(r.Context(), jobID.String())
	if err == nil {
		if status != jobStatusDone {
			shared.RespondWithJSON(w, r, http.StatusOK, ResultResponse{Status: status})
			return
		}

		result, resultErr := h.resultCache.GetResult(r.Context(), jobID.String())
		if resultErr == nil {
			shared.RespondWithJSON(w, r, http.StatusOK, ResultResponse{
				Status: jobStatusDone,
				Data:   json.RawMessage(result),
			})
			return
		}
		// Result evicted between the two reads; rebuild from the database.
	} else if !errors.Is(err, redis.ErrJobNotFound) {
		logger.FromContextOrDefault(r.Context(), nil).Warn("result cache read failed",
			"error", err,
			"job_id", jobID)
	}

	h.respondFromDatabase(w, r, jobID)
}

// respondFromDatabase derives the job status from the stored submission and,
// for finished jobs, reloads the extracted items.
func (h *ResultHandler) respondFromDatabase(w http.ResponseWriter, r *http.Request, jobID uuid.UUID) {
	submission, err := h.ingestService.GetSubmission(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Job not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to look up job", err)
		return
	}

	switch submission.Status {
	case domain.SubmissionStatusPending:
		shared.RespondWithJSON(w, r, http.StatusOK, ResultResponse{Status: jobStatusQueued})
	case domain.SubmissionStatusProcessing:
		shared.RespondWithJSON(w, r, http.StatusOK, ResultResponse{Status: jobStatusProcessing})
	case domain.SubmissionStatusFailed:
		shared.RespondWithJSON(w, r, http.StatusOK, ResultResponse{Status: jobStatusFailed})
	case domain.SubmissionStatusCompleted, domain.SubmissionStatusCompletedWithErrors:
		items, err := h.ingestService.GetOfferItems(r.Context(), jobID)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to load job result", err)
			return
		}

		data, err := json.Marshal(domain.OfferResponse{Data: items})
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to load job result", err)
			return
		}

		shared.RespondWithJSON(w, r, http.StatusOK, ResultResponse{
			Status: jobStatusDone,
			Data:   data,
		})
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to look up job", errors.New("unknown submission status"))
	}
}
