package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobRequestEvent(t *testing.T) {
	type testPayload struct {
		SubmissionID uuid.UUID `json:"submission_id"`
		Action       string    `json:"action"`
	}

	payload := testPayload{
		SubmissionID: uuid.New(),
		Action:       "extract_offer",
	}

	event, err := NewJobRequestEvent("offer_extraction", payload)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "offer_extraction", event.Type)
	assert.NotNil(t, event.Payload)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded testPayload
	err = json.Unmarshal(event.Payload, &decoded)
	require.NoError(t, err)
	assert.Equal(t, payload.SubmissionID, decoded.SubmissionID)
	assert.Equal(t, payload.Action, decoded.Action)
}

func TestUnmarshalPayload(t *testing.T) {
	type testPayload struct {
		SubmissionID uuid.UUID `json:"submission_id"`
	}

	want := testPayload{SubmissionID: uuid.New()}
	event, err := NewJobRequestEvent("offer_extraction", want)
	require.NoError(t, err)

	var got testPayload
	require.NoError(t, event.UnmarshalPayload(&got))
	assert.Equal(t, want, got)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *JobRequestEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *JobRequestEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}
