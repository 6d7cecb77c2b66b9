package task

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/extraction"
	"github.com/spraicheux/offerflow/internal/platform/redis"
)

// OfferExtractionTaskFactory creates OfferExtractionTask instances
type OfferExtractionTaskFactory struct {
	submissions SubmissionService
	extractor   extraction.Extractor
	offers      OfferService
	downloader  Downloader
	cache       redis.ResultCache
	logger      *slog.Logger
}

// NewOfferExtractionTaskFactory creates a new factory for OfferExtractionTasks
func NewOfferExtractionTaskFactory(
	submissions SubmissionService,
	extractor extraction.Extractor,
	offers OfferService,
	downloader Downloader,
	cache redis.ResultCache,
	logger *slog.Logger,
) *OfferExtractionTaskFactory {
	return &OfferExtractionTaskFactory{
		submissions: submissions,
		extractor:   extractor,
		offers:      offers,
		downloader:  downloader,
		cache:       cache,
		logger:      logger.With("component", "offer_extraction_task_factory"),
	}
}

// CreateTask creates a new OfferExtractionTask for the specified submission
func (f *OfferExtractionTaskFactory) CreateTask(submissionID uuid.UUID) (Task, error) {
	task, err := NewOfferExtractionTask(
		submissionID,
		f.submissions,
		f.extractor,
		f.offers,
		f.downloader,
		f.cache,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
