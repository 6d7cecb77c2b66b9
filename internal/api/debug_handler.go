package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/api/shared"
	"github.com/spraicheux/offerflow/internal/platform/redis"
)

// DebugHandler exposes raw cache state for troubleshooting stuck jobs.
// Routes using it must sit behind authentication.
type DebugHandler struct {
	resultCache redis.ResultCache
}

// NewDebugHandler creates a new DebugHandler.
func NewDebugHandler(resultCache redis.ResultCache) *DebugHandler {
	return &DebugHandler{resultCache: resultCache}
}

// debugJobResponse mirrors the raw cache entries for one job.
type debugJobResponse struct {
	JobID  uuid.UUID       `json:"job_id"`
	Exists bool            `json:"exists"`
	Status string          `json:"status,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// GetJob handles the GET /debug/job/{job_id} endpoint. Unlike the public
// results endpoint it reports exactly what the cache holds, without the
// database fallback.
func (h *DebugHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "job_id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}

	resp := debugJobResponse{JobID: jobID}

	exists, err := h.resultCache.Exists(r.Context(), jobID.String())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to inspect job", err)
		return
	}
	resp.Exists = exists

	if status, err := h.resultCache.GetStatus(r.Context(), jobID.String()); err == nil {
		resp.Status = status
	}
	if result, err := h.resultCache.GetResult(r.Context(), jobID.String()); err == nil {
		resp.Result = json.RawMessage(result)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
