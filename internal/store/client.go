package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Client represents an API consumer authorized to submit offers.
type Client struct {
	ID         uuid.UUID
	ClientID   string
	APIKeyHash string
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ClientStore defines the interface for API client persistence.
type ClientStore interface {
	// Create saves a new client to the store.
	// Returns ErrDuplicate if the client ID is already taken.
	Create(ctx context.Context, client *Client) error

	// GetByClientID retrieves a client by its external client ID.
	// Returns ErrClientNotFound if the client does not exist.
	GetByClientID(ctx context.Context, clientID string) (*Client, error)

	// GetByID retrieves a client by its internal UUID.
	// Returns ErrClientNotFound if the client does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// WithTx returns a new ClientStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ClientStore
}
