package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/domain"
	"github.com/spraicheux/offerflow/internal/platform/logger"
	"github.com/spraicheux/offerflow/internal/store"
)

// PostgresOfferStore implements the store.OfferStore interface using a
// PostgreSQL database as the storage backend. The full offer item is kept
// as a JSONB document alongside the columns queries filter on.
type PostgresOfferStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOfferStore creates a new PostgreSQL implementation of the
// OfferStore interface. If logger is nil, a default logger will be used.
func NewPostgresOfferStore(db store.DBTX, logger *slog.Logger) *PostgresOfferStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresOfferStore{
		db:     db,
		logger: logger.With(slog.String("component", "offer_store")),
	}
}

// Ensure PostgresOfferStore implements store.OfferStore interface
var _ store.OfferStore = (*PostgresOfferStore)(nil)

// CreateMany implements store.OfferStore.CreateMany
// It validates and persists the offer items extracted from one submission.
// Returns store.ErrInvalidEntity if the submission doesn't exist (foreign
// key violation).
func (s *PostgresOfferStore) CreateMany(ctx context.Context, submissionID uuid.UUID, items []*domain.OfferItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO offer_items (
			uid, submission_id, product_name, product_key,
			confidence_score, needs_manual_review, data, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now().UTC()
	for _, item := range items {
		if err := item.Validate(); err != nil {
			log.Warn("offer item validation failed during create",
				slog.String("error", err.Error()),
				slog.String("uid", item.UID),
				slog.String("submission_id", submissionID.String()))
			return err
		}

		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal offer item: %w", err)
		}

		_, err = s.db.ExecContext(
			ctx,
			query,
			item.UID,
			submissionID,
			item.ProductName,
			item.ProductKey,
			item.ConfidenceScore,
			item.NeedsManualReview,
			data,
			now,
		)
		if err != nil {
			if IsForeignKeyViolation(err) {
				log.Warn("foreign key violation during offer item creation",
					slog.String("submission_id", submissionID.String()),
					slog.String("uid", item.UID))
				return fmt.Errorf("%w: submission with ID %s not found",
					store.ErrInvalidEntity, submissionID)
			}
			log.Error("failed to create offer item",
				slog.String("error", err.Error()),
				slog.String("uid", item.UID),
				slog.String("submission_id", submissionID.String()))
			return MapError(err)
		}
	}

	log.Info("offer items created successfully",
		slog.String("submission_id", submissionID.String()),
		slog.Int("count", len(items)))
	return nil
}

// FindBySubmission implements store.OfferStore.FindBySubmission
// Returns an empty slice when no items exist for the submission.
func (s *PostgresOfferStore) FindBySubmission(ctx context.Context, submissionID uuid.UUID) ([]*domain.OfferItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT data
		FROM offer_items
		WHERE submission_id = $1
		ORDER BY created_at ASC, uid ASC
	`

	rows, err := s.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		log.Error("failed to query offer items",
			slog.String("error", err.Error()),
			slog.String("submission_id", submissionID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*domain.OfferItem, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan offer item row: %w", err)
		}

		var item domain.OfferItem
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal offer item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer item rows: %w", err)
	}

	log.Debug("offer items retrieved",
		slog.String("submission_id", submissionID.String()),
		slog.Int("count", len(items)))
	return items, nil
}

// WithTx implements store.OfferStore.WithTx
func (s *PostgresOfferStore) WithTx(tx *sql.Tx) store.OfferStore {
	return &PostgresOfferStore{
		db:     tx,
		logger: s.logger,
	}
}
