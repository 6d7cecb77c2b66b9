package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/domain"
	"github.com/spraicheux/offerflow/internal/store"
	"github.com/spraicheux/offerflow/internal/task"
)

// OfferRepositoryAdapter adapts a store.OfferStore to both the service
// layer's OfferRepository (reads for the results endpoint) and the task
// layer's OfferService (writes from the extraction worker).
type OfferRepositoryAdapter struct {
	offerStore store.OfferStore
}

// NewOfferRepositoryAdapter creates an adapter delegating to the given store.
func NewOfferRepositoryAdapter(offerStore store.OfferStore) *OfferRepositoryAdapter {
	return &OfferRepositoryAdapter{offerStore: offerStore}
}

// FindBySubmission retrieves the offer items extracted from a submission.
func (a *OfferRepositoryAdapter) FindBySubmission(
	ctx context.Context,
	submissionID uuid.UUID,
) ([]*domain.OfferItem, error) {
	return a.offerStore.FindBySubmission(ctx, submissionID)
}

// SaveOfferItems persists the extracted offer items for a submission.
func (a *OfferRepositoryAdapter) SaveOfferItems(
	ctx context.Context,
	submissionID uuid.UUID,
	items []*domain.OfferItem,
) error {
	return a.offerStore.CreateMany(ctx, submissionID, items)
}

// Interface checks
var (
	_ OfferRepository   = (*OfferRepositoryAdapter)(nil)
	_ task.OfferService = (*OfferRepositoryAdapter)(nil)
)
