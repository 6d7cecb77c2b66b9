package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spraicheux/offerflow/internal/domain"
	"github.com/spraicheux/offerflow/internal/events"
	"github.com/spraicheux/offerflow/internal/store"
)

// MockSubmissionRepository implements SubmissionRepository for testing
type MockSubmissionRepository struct {
	submission *domain.Submission
	getErr     error
	updateErr  error

	updatedTo []domain.SubmissionStatus
}

func (m *MockSubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	return nil
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.submission, nil
}

func (m *MockSubmissionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedTo = append(m.updatedTo, status)
	return nil
}

func (m *MockSubmissionRepository) WithTx(tx *sql.Tx) SubmissionRepository {
	return m
}

func (m *MockSubmissionRepository) DB() *sql.DB {
	return nil
}

// MockOfferRepository implements OfferRepository for testing
type MockOfferRepository struct {
	items []*domain.OfferItem
	err   error
}

func (m *MockOfferRepository) FindBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*domain.OfferItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func serviceTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestIngestService(t *testing.T, subs SubmissionRepository, offers OfferRepository) IngestService {
	t.Helper()
	svc, err := NewIngestService(subs, offers,
		events.NewInMemoryEventEmitter(serviceTestLogger()), serviceTestLogger())
	require.NoError(t, err)
	return svc
}

func TestNewIngestServiceValidation(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(serviceTestLogger())
	subs := &MockSubmissionRepository{}
	offers := &MockOfferRepository{}

	_, err := NewIngestService(nil, offers, emitter, serviceTestLogger())
	assert.ErrorContains(t, err, "submissionRepo cannot be nil")

	_, err = NewIngestService(subs, nil, emitter, serviceTestLogger())
	assert.ErrorContains(t, err, "offerRepo cannot be nil")

	_, err = NewIngestService(subs, offers, nil, serviceTestLogger())
	assert.ErrorContains(t, err, "eventEmitter cannot be nil")

	svc, err := NewIngestService(subs, offers, emitter, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGetSubmission(t *testing.T) {
	t.Parallel()

	sub, err := domain.NewSubmission(
		domain.ChannelEmail, "msg-1", "offer.pdf", "", "", "some text", nil)
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		svc := newTestIngestService(t,
			&MockSubmissionRepository{submission: sub}, &MockOfferRepository{})

		got, err := svc.GetSubmission(context.Background(), sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, got.ID)
	})

	t.Run("not found maps to sentinel", func(t *testing.T) {
		t.Parallel()
		svc := newTestIngestService(t,
			&MockSubmissionRepository{getErr: store.ErrSubmissionNotFound}, &MockOfferRepository{})

		_, err := svc.GetSubmission(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrSubmissionNotFound)
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		t.Parallel()
		svc := newTestIngestService(t,
			&MockSubmissionRepository{getErr: errors.New("connection reset")}, &MockOfferRepository{})

		_, err := svc.GetSubmission(context.Background(), uuid.New())
		require.Error(t, err)
		var svcErr *IngestServiceError
		assert.ErrorAs(t, err, &svcErr)
	})
}

func TestUpdateSubmissionStatus(t *testing.T) {
	t.Parallel()

	t.Run("delegates to repository", func(t *testing.T) {
		t.Parallel()
		repo := &MockSubmissionRepository{}
		svc := newTestIngestService(t, repo, &MockOfferRepository{})

		require.NoError(t, svc.UpdateSubmissionStatus(
			context.Background(), uuid.New(), domain.SubmissionStatusCompleted))
		assert.Equal(t, []domain.SubmissionStatus{domain.SubmissionStatusCompleted}, repo.updatedTo)
	})

	t.Run("not found maps to sentinel", func(t *testing.T) {
		t.Parallel()
		svc := newTestIngestService(t,
			&MockSubmissionRepository{updateErr: store.ErrSubmissionNotFound}, &MockOfferRepository{})

		err := svc.UpdateSubmissionStatus(
			context.Background(), uuid.New(), domain.SubmissionStatusCompleted)
		assert.ErrorIs(t, err, ErrSubmissionNotFound)
	})
}

func TestGetOfferItems(t *testing.T) {
	t.Parallel()

	items := []*domain.OfferItem{{UID: uuid.New().String(), ProductName: "Cava", ProductKey: "cava"}}
	svc := newTestIngestService(t,
		&MockSubmissionRepository{}, &MockOfferRepository{items: items})

	got, err := svc.GetOfferItems(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestNewIngestServiceError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewIngestServiceError("op", "msg", nil))

	assert.ErrorIs(t,
		NewIngestServiceError("op", "msg", store.ErrSubmissionNotFound),
		ErrSubmissionNotFound)
	assert.ErrorIs(t,
		NewIngestServiceError("op", "msg", store.ErrDuplicateSubmission),
		ErrDuplicateSubmission)

	wrapped := NewIngestServiceError("create_submission", "insert failed", errors.New("boom"))
	var svcErr *IngestServiceError
	require.ErrorAs(t, wrapped, &svcErr)
	assert.Equal(t, "create_submission", svcErr.Operation)
	assert.Contains(t, wrapped.Error(), "insert failed")
}
