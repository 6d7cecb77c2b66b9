package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/events"
)

// TaskFactory creates tasks for a submission
type TaskFactory interface {
	CreateTask(submissionID uuid.UUID) (Task, error)
}

// TaskSubmitter accepts tasks for background execution
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// JobRequestEventHandler implements the events.EventHandler interface,
// turning job request events into queued extraction tasks.
type JobRequestEventHandler struct {
	factory   TaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

// NewJobRequestEventHandler creates an event handler that builds tasks with
// the given factory and submits them to the provided runner.
func NewJobRequestEventHandler(
	factory TaskFactory,
	submitter TaskSubmitter,
	logger *slog.Logger,
) *JobRequestEventHandler {
	return &JobRequestEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "job_request_event_handler"),
	}
}

// HandleEvent processes an event by creating and submitting the matching
// task. Events of other types are ignored.
func (h *JobRequestEventHandler) HandleEvent(ctx context.Context, event *events.JobRequestEvent) error {
	if event.Type != TaskTypeOfferExtraction {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		SubmissionID string `json:"submission_id"`
	}

	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	submissionID, err := uuid.Parse(payload.SubmissionID)
	if err != nil {
		h.logger.Error("invalid submission ID",
			"error", err,
			"submission_id", payload.SubmissionID,
			"event_id", event.ID)
		return fmt.Errorf("invalid submission ID: %w", err)
	}

	task, err := h.factory.CreateTask(submissionID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"submission_id", submissionID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"submission_id", submissionID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", task.ID(),
		"submission_id", submissionID,
		"event_id", event.ID)
	return nil
}

// Ensure JobRequestEventHandler implements events.EventHandler
var _ events.EventHandler = (*JobRequestEventHandler)(nil)
