package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spraicheux/offerflow/internal/platform/logger"
	"github.com/spraicheux/offerflow/internal/store"
)

// PostgresClientStore implements the store.ClientStore interface using a
// PostgreSQL database as the storage backend.
type PostgresClientStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresClientStore creates a new PostgreSQL implementation of the
// ClientStore interface. If logger is nil, a default logger will be used.
func NewPostgresClientStore(db store.DBTX, logger *slog.Logger) *PostgresClientStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresClientStore{
		db:     db,
		logger: logger.With(slog.String("component", "client_store")),
	}
}

// Ensure PostgresClientStore implements store.ClientStore interface
var _ store.ClientStore = (*PostgresClientStore)(nil)

// Create implements store.ClientStore.Create
// Returns store.ErrDuplicate if the client ID is already taken.
func (s *PostgresClientStore) Create(ctx context.Context, client *store.Client) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now

	query := `
		INSERT INTO clients (id, client_id, api_key_hash, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		client.ID,
		client.ClientID,
		client.APIKeyHash,
		client.Name,
		client.CreatedAt,
		client.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate client ID",
				slog.String("client_id", client.ClientID))
			return fmt.Errorf("%w: client ID %s already exists",
				store.ErrDuplicate, client.ClientID)
		}
		log.Error("failed to create client",
			slog.String("error", err.Error()),
			slog.String("client_id", client.ClientID))
		return MapError(err)
	}

	log.Info("client created successfully",
		slog.String("client_id", client.ClientID))
	return nil
}

// GetByClientID implements store.ClientStore.GetByClientID
// Returns store.ErrClientNotFound if the client does not exist.
func (s *PostgresClientStore) GetByClientID(ctx context.Context, clientID string) (*store.Client, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, client_id, api_key_hash, name, created_at, updated_at
		FROM clients
		WHERE client_id = $1
	`

	var client store.Client
	err := s.db.QueryRowContext(ctx, query, clientID).Scan(
		&client.ID,
		&client.ClientID,
		&client.APIKeyHash,
		&client.Name,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("client not found", slog.String("client_id", clientID))
			return nil, store.ErrClientNotFound
		}
		log.Error("failed to get client",
			slog.String("error", err.Error()),
			slog.String("client_id", clientID))
		return nil, MapError(err)
	}

	return &client, nil
}

// GetByID implements store.ClientStore.GetByID
// Returns store.ErrClientNotFound if the client does not exist.
func (s *PostgresClientStore) GetByID(ctx context.Context, id uuid.UUID) (*store.Client, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, client_id, api_key_hash, name, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	var client store.Client
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&client.ID,
		&client.ClientID,
		&client.APIKeyHash,
		&client.Name,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("client not found", slog.String("id", id.String()))
			return nil, store.ErrClientNotFound
		}
		log.Error("failed to get client by ID",
			slog.String("error", err.Error()),
			slog.String("id", id.String()))
		return nil, MapError(err)
	}

	return &client, nil
}

// WithTx implements store.ClientStore.WithTx
func (s *PostgresClientStore) WithTx(tx *sql.Tx) store.ClientStore {
	return &PostgresClientStore{
		db:     tx,
		logger: s.logger,
	}
}
