package task

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spraicheux/offerflow/internal/domain"
	"github.com/spraicheux/offerflow/internal/extraction"
	"github.com/spraicheux/offerflow/internal/platform/redis"
)

// mockSubmissionService implements SubmissionService for testing
type mockSubmissionService struct {
	submission    *domain.Submission
	getErr        error
	updateErr     error
	statusUpdates []domain.SubmissionStatus
}

func (m *mockSubmissionService) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.submission, nil
}

func (m *mockSubmissionService) UpdateSubmissionStatus(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.statusUpdates = append(m.statusUpdates, status)
	return nil
}

// mockExtractor implements extraction.Extractor for testing
type mockExtractor struct {
	items []*domain.OfferItem
	err   error
	calls int
}

func (m *mockExtractor) ExtractOffer(ctx context.Context, doc extraction.Document) ([]*domain.OfferItem, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

// mockOfferService implements OfferService for testing
type mockOfferService struct {
	saved []*domain.OfferItem
	err   error
}

func (m *mockOfferService) SaveOfferItems(ctx context.Context, submissionID uuid.UUID, items []*domain.OfferItem) error {
	if m.err != nil {
		return m.err
	}
	m.saved = items
	return nil
}

// mockDownloader implements Downloader for testing
type mockDownloader struct {
	data []byte
	err  error
}

func (m *mockDownloader) Fetch(ctx context.Context, att domain.Attachment) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

func testTaskLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSubmission(t *testing.T) *domain.Submission {
	t.Helper()
	sub, err := domain.NewSubmission(
		domain.ChannelEmail,
		"msg-123",
		"offer.pdf",
		"sales@freixenet.example",
		"Freixenet Export",
		"Carta Nevada Extra Dry, 6x75cl, 19.60 EUR per case, DAP Loendersloot",
		nil,
	)
	require.NoError(t, err)
	return sub
}

func extractedItem() *domain.OfferItem {
	brand := "Freixenet"
	packaging := "Bottle"
	price := 19.60
	currency := "EUR"
	units := 6
	return &domain.OfferItem{
		ProductName:     "Freixenet Carta Nevada Extra Dry",
		Brand:           &brand,
		Packaging:       &packaging,
		PricePerCase:    &price,
		Currency:        &currency,
		UnitsPerCase:    &units,
		ConfidenceScore: 0.85,
	}
}

func newTestTask(
	t *testing.T,
	submissionID uuid.UUID,
	submissions SubmissionService,
	extractor extraction.Extractor,
	offers OfferService,
	downloader Downloader,
	cache redis.ResultCache,
) *OfferExtractionTask {
	t.Helper()
	task, err := NewOfferExtractionTask(
		submissionID, submissions, extractor, offers, downloader, cache, testTaskLogger())
	require.NoError(t, err)
	return task
}

func TestNewOfferExtractionTaskValidation(t *testing.T) {
	t.Parallel()

	subs := &mockSubmissionService{}
	ext := &mockExtractor{}
	offers := &mockOfferService{}
	dl := &mockDownloader{}
	cache := redis.NewMemoryCache(time.Hour)
	logger := testTaskLogger()
	id := uuid.New()

	cases := []struct {
		name    string
		build   func() (*OfferExtractionTask, error)
		wantErr error
	}{
		{
			name: "nil submission service",
			build: func() (*OfferExtractionTask, error) {
				return NewOfferExtractionTask(id, nil, ext, offers, dl, cache, logger)
			},
			wantErr: ErrNilSubmissionService,
		},
		{
			name: "nil extractor",
			build: func() (*OfferExtractionTask, error) {
				return NewOfferExtractionTask(id, subs, nil, offers, dl, cache, logger)
			},
			wantErr: ErrNilExtractor,
		},
		{
			name: "nil offer service",
			build: func() (*OfferExtractionTask, error) {
				return NewOfferExtractionTask(id, subs, ext, nil, dl, cache, logger)
			},
			wantErr: ErrNilOfferService,
		},
		{
			name: "nil downloader",
			build: func() (*OfferExtractionTask, error) {
				return NewOfferExtractionTask(id, subs, ext, offers, nil, cache, logger)
			},
			wantErr: ErrNilDownloader,
		},
		{
			name: "nil cache",
			build: func() (*OfferExtractionTask, error) {
				return NewOfferExtractionTask(id, subs, ext, offers, dl, nil, logger)
			},
			wantErr: ErrNilResultCache,
		},
		{
			name: "nil logger",
			build: func() (*OfferExtractionTask, error) {
				return NewOfferExtractionTask(id, subs, ext, offers, dl, cache, nil)
			},
			wantErr: ErrNilLogger,
		},
		{
			name: "empty submission ID",
			build: func() (*OfferExtractionTask, error) {
				return NewOfferExtractionTask(uuid.Nil, subs, ext, offers, dl, cache, logger)
			},
			wantErr: ErrEmptySubmissionID,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tc.build()
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestOfferExtractionTaskPayload(t *testing.T) {
	t.Parallel()

	sub := testSubmission(t)
	task := newTestTask(t, sub.ID,
		&mockSubmissionService{submission: sub},
		&mockExtractor{},
		&mockOfferService{},
		&mockDownloader{},
		redis.NewMemoryCache(time.Hour))

	var payload offerExtractionPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, sub.ID, payload.SubmissionID)
	assert.Equal(t, TaskTypeOfferExtraction, task.Type())
	assert.Equal(t, TaskStatusPending, task.Status())
}

func TestOfferExtractionTaskExecuteSuccess(t *testing.T) {
	t.Parallel()

	sub := testSubmission(t)
	subs := &mockSubmissionService{submission: sub}
	offers := &mockOfferService{}
	cache := redis.NewMemoryCache(time.Hour)

	task := newTestTask(t, sub.ID, subs,
		&mockExtractor{items: []*domain.OfferItem{extractedItem()}},
		offers, &mockDownloader{}, cache)

	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, TaskStatusCompleted, task.Status())

	// The submission moved through processing to completed
	assert.Equal(t, []domain.SubmissionStatus{
		domain.SubmissionStatusProcessing,
		domain.SubmissionStatusCompleted,
	}, subs.statusUpdates)

	// The saved item got identity, provenance, and derived fields
	require.Len(t, offers.saved, 1)
	item := offers.saved[0]
	assert.NoError(t, item.Validate())
	assert.Equal(t, domain.ChannelEmail, item.SourceChannel)
	assert.Equal(t, "msg-123", item.SourceMessageID)
	assert.Equal(t, "offer.pdf", item.SourceFilename)
	assert.Equal(t, domain.ProcessingVersion, item.ProcessingVersion)
	assert.Equal(t, "freixenet_freixenet_carta_nevada_extra_dry_bottle", item.ProductKey)
	require.NotNil(t, item.PricePerUnit)
	assert.InDelta(t, 3.2667, *item.PricePerUnit, 0.0001)
	require.NotNil(t, item.SupplierEmail)
	assert.Equal(t, "sales@freixenet.example", *item.SupplierEmail)
	assert.False(t, item.NeedsManualReview)

	// The cache carries the terminal status and the result payload
	jobID := sub.ID.String()
	status, err := cache.GetStatus(context.Background(), jobID)
	require.NoError(t, err)
	assert.Equal(t, "done", status)

	resultJSON, err := cache.GetResult(context.Background(), jobID)
	require.NoError(t, err)
	var result domain.OfferResponse
	require.NoError(t, json.Unmarshal(resultJSON, &result))
	require.Len(t, result.Data, 1)
	assert.Equal(t, item.UID, result.Data[0].UID)
}

func TestOfferExtractionTaskExecuteExtractionFails(t *testing.T) {
	t.Parallel()

	sub := testSubmission(t)
	subs := &mockSubmissionService{submission: sub}
	cache := redis.NewMemoryCache(time.Hour)

	task := newTestTask(t, sub.ID, subs,
		&mockExtractor{err: extraction.ErrExtractionFailed},
		&mockOfferService{}, &mockDownloader{}, cache)

	err := task.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, TaskStatusFailed, task.Status())

	assert.Contains(t, subs.statusUpdates, domain.SubmissionStatusFailed)

	status, cacheErr := cache.GetStatus(context.Background(), sub.ID.String())
	require.NoError(t, cacheErr)
	assert.Equal(t, "failed", status)
}

func TestOfferExtractionTaskExecuteAttachmentFailure(t *testing.T) {
	t.Parallel()

	sub, err := domain.NewSubmission(
		domain.ChannelWhatsApp,
		"wamid.456",
		"pricelist.pdf",
		"", "",
		"Moet & Chandon Imperial Brut, 6x75cl, 210 EUR",
		[]domain.Attachment{{Filename: "pricelist.pdf", URL: "https://lookaside.fbsbx.com/x", ContentType: "application/pdf"}},
	)
	require.NoError(t, err)

	subs := &mockSubmissionService{submission: sub}
	offers := &mockOfferService{}
	cache := redis.NewMemoryCache(time.Hour)

	task := newTestTask(t, sub.ID, subs,
		&mockExtractor{items: []*domain.OfferItem{extractedItem()}},
		offers,
		&mockDownloader{err: errors.New("media gone")},
		cache)

	// The text body still yields items, so the job completes with errors
	require.NoError(t, task.Execute(context.Background()))
	assert.Equal(t, TaskStatusCompleted, task.Status())
	assert.Contains(t, subs.statusUpdates, domain.SubmissionStatusCompletedWithErrors)

	require.Len(t, offers.saved, 1)
	assert.Contains(t, offers.saved[0].ErrorFlags, domain.FlagAttachmentFailed)
	assert.True(t, offers.saved[0].NeedsManualReview)
}

func TestOfferExtractionTaskExecuteNoDocuments(t *testing.T) {
	t.Parallel()

	sub, err := domain.NewSubmission(
		domain.ChannelEmail, "msg-789", "empty.eml", "", "", "",
		[]domain.Attachment{{Filename: "broken.pdf", URL: "https://files.example.com/broken.pdf"}},
	)
	require.NoError(t, err)

	subs := &mockSubmissionService{submission: sub}
	cache := redis.NewMemoryCache(time.Hour)

	task := newTestTask(t, sub.ID, subs,
		&mockExtractor{items: []*domain.OfferItem{extractedItem()}},
		&mockOfferService{},
		&mockDownloader{err: errors.New("download failed")},
		cache)

	execErr := task.Execute(context.Background())
	require.ErrorIs(t, execErr, ErrNoDocuments)
	assert.Equal(t, TaskStatusFailed, task.Status())
}

func TestOfferExtractionTaskExecuteSubmissionMissing(t *testing.T) {
	t.Parallel()

	subs := &mockSubmissionService{getErr: errors.New("not found")}
	task := newTestTask(t, uuid.New(), subs,
		&mockExtractor{}, &mockOfferService{}, &mockDownloader{},
		redis.NewMemoryCache(time.Hour))

	err := task.Execute(context.Background())
	require.Error(t, err)
	assert.Equal(t, TaskStatusFailed, task.Status())
	assert.Contains(t, err.Error(), "failed to retrieve submission")
}
