package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spraicheux/offerflow/internal/events"
)

// mockTaskFactory implements TaskFactory for testing
type mockTaskFactory struct {
	task Task
	err  error

	createdFor []uuid.UUID
}

func (f *mockTaskFactory) CreateTask(submissionID uuid.UUID) (Task, error) {
	f.createdFor = append(f.createdFor, submissionID)
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

// mockTaskSubmitter implements TaskSubmitter for testing
type mockTaskSubmitter struct {
	submitted []Task
	err       error
}

func (s *mockTaskSubmitter) Submit(ctx context.Context, task Task) error {
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, task)
	return nil
}

func newExtractionEvent(t *testing.T, submissionID uuid.UUID) *events.JobRequestEvent {
	t.Helper()
	event, err := events.NewJobRequestEvent(TaskTypeOfferExtraction, map[string]string{
		"submission_id": submissionID.String(),
	})
	require.NoError(t, err)
	return event
}

func TestJobRequestEventHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("creates and submits task", func(t *testing.T) {
		submissionID := uuid.New()
		mockTask := NewMockTask(uuid.New(), TaskTypeOfferExtraction, nil)
		factory := &mockTaskFactory{task: mockTask}
		submitter := &mockTaskSubmitter{}

		handler := NewJobRequestEventHandler(factory, submitter, logger)
		err := handler.HandleEvent(context.Background(), newExtractionEvent(t, submissionID))
		require.NoError(t, err)

		require.Len(t, factory.createdFor, 1)
		assert.Equal(t, submissionID, factory.createdFor[0])
		require.Len(t, submitter.submitted, 1)
		assert.Equal(t, mockTask, submitter.submitted[0])
	})

	t.Run("ignores other event types", func(t *testing.T) {
		factory := &mockTaskFactory{}
		submitter := &mockTaskSubmitter{}
		handler := NewJobRequestEventHandler(factory, submitter, logger)

		event, err := events.NewJobRequestEvent("unrelated_type", map[string]string{})
		require.NoError(t, err)

		require.NoError(t, handler.HandleEvent(context.Background(), event))
		assert.Empty(t, factory.createdFor)
		assert.Empty(t, submitter.submitted)
	})

	t.Run("rejects malformed submission ID", func(t *testing.T) {
		factory := &mockTaskFactory{}
		handler := NewJobRequestEventHandler(factory, &mockTaskSubmitter{}, logger)

		event, err := events.NewJobRequestEvent(TaskTypeOfferExtraction, map[string]string{
			"submission_id": "not-a-uuid",
		})
		require.NoError(t, err)

		err = handler.HandleEvent(context.Background(), event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid submission ID")
	})

	t.Run("propagates factory errors", func(t *testing.T) {
		factory := &mockTaskFactory{err: errors.New("factory broken")}
		handler := NewJobRequestEventHandler(factory, &mockTaskSubmitter{}, logger)

		err := handler.HandleEvent(context.Background(), newExtractionEvent(t, uuid.New()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create task")
	})

	t.Run("propagates submit errors", func(t *testing.T) {
		mockTask := NewMockTask(uuid.New(), TaskTypeOfferExtraction, nil)
		submitter := &mockTaskSubmitter{err: errors.New("queue full")}
		handler := NewJobRequestEventHandler(&mockTaskFactory{task: mockTask}, submitter, logger)

		err := handler.HandleEvent(context.Background(), newExtractionEvent(t, uuid.New()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to submit task")
	})
}
