package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spraicheux/offerflow/internal/domain"
	"github.com/spraicheux/offerflow/internal/platform/redis"
	"github.com/spraicheux/offerflow/internal/service"
)

// mockIngestService implements service.IngestService for handler tests.
type mockIngestService struct {
	createErr  error
	created    *domain.Submission
	submission *domain.Submission
	getErr     error
	items      []*domain.OfferItem
	itemsErr   error
}

func (m *mockIngestService) CreateSubmissionAndEnqueueJob(
	ctx context.Context,
	submission *domain.Submission,
) (*domain.Submission, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = submission
	return submission, nil
}

func (m *mockIngestService) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.submission, nil
}

func (m *mockIngestService) UpdateSubmissionStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.SubmissionStatus,
) error {
	return nil
}

func (m *mockIngestService) GetOfferItems(ctx context.Context, submissionID uuid.UUID) ([]*domain.OfferItem, error) {
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	return m.items, nil
}

var _ service.IngestService = (*mockIngestService)(nil)

func postIngest(t *testing.T, handler *IngestHandler, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/ingest", bytes.NewReader(body))
	handler.Ingest(w, r)
	return w
}

func TestIngestAcceptsSubmission(t *testing.T) {
	t.Parallel()

	svc := &mockIngestService{}
	cache := redis.NewMemoryCache(time.Hour)
	handler := NewIngestHandler(svc, cache)

	w := postIngest(t, handler, IngestRequest{
		SourceChannel:   "whatsapp",
		SourceMessageID: "wamid.123",
		SupplierEmail:   "sales@freixenet.example",
		Attachments: []AttachmentPayload{
			{Filename: "offer.pdf", ContentType: "application/pdf", URL: "https://example.com/offer.pdf"},
		},
	})

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp IngestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp.Status)
	require.NotNil(t, svc.created)
	assert.Equal(t, svc.created.ID, resp.JobID)

	// Job is pollable immediately after accept
	status, err := cache.GetStatus(context.Background(), resp.JobID.String())
	require.NoError(t, err)
	assert.Equal(t, "queued", status)
}

func TestIngestValidation(t *testing.T) {
	t.Parallel()

	handler := NewIngestHandler(&mockIngestService{}, redis.NewMemoryCache(time.Hour))

	tests := []struct {
		name    string
		payload IngestRequest
	}{
		{
			name: "unknown channel",
			payload: IngestRequest{
				SourceChannel:   "fax",
				SourceMessageID: "msg-1",
				TextBody:        "offer text",
			},
		},
		{
			name: "missing message id",
			payload: IngestRequest{
				SourceChannel: "email",
				TextBody:      "offer text",
			},
		},
		{
			name: "bad supplier email",
			payload: IngestRequest{
				SourceChannel:   "email",
				SourceMessageID: "msg-1",
				SupplierEmail:   "not-an-email",
				TextBody:        "offer text",
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := postIngest(t, handler, tc.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestIngestRejectsEmptyContent(t *testing.T) {
	t.Parallel()

	handler := NewIngestHandler(&mockIngestService{}, redis.NewMemoryCache(time.Hour))

	// Passes struct validation but has neither text body nor attachments
	w := postIngest(t, handler, IngestRequest{
		SourceChannel:   "email",
		SourceMessageID: "msg-1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestMalformedJSON(t *testing.T) {
	t.Parallel()

	handler := NewIngestHandler(&mockIngestService{}, redis.NewMemoryCache(time.Hour))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/ingest", bytes.NewReader([]byte("{not json")))
	handler.Ingest(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestDuplicateSubmission(t *testing.T) {
	t.Parallel()

	handler := NewIngestHandler(
		&mockIngestService{createErr: service.ErrDuplicateSubmission},
		redis.NewMemoryCache(time.Hour))

	w := postIngest(t, handler, IngestRequest{
		SourceChannel:   "email",
		SourceMessageID: "msg-1",
		TextBody:        "offer text",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
