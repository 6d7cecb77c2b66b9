package api

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Common request/response structures

// AttachmentPayload describes a single document attached to a submission.
// Either URL or Data must be set; Data carries inline base64-decoded content.
type AttachmentPayload struct {
	Filename    string `json:"filename"               validate:"required"`
	ContentType string `json:"content_type,omitempty"`
	URL         string `json:"url,omitempty"          validate:"omitempty,url"`
	Data        []byte `json:"data,omitempty"`
}

// IngestRequest defines the payload for the document ingestion endpoint.
type IngestRequest struct {
	SourceChannel   string              `json:"source_channel"    validate:"required,oneof=email whatsapp"`
	SourceMessageID string              `json:"source_message_id" validate:"required"`
	SourceFilename  string              `json:"source_filename,omitempty"`
	SupplierEmail   string              `json:"supplier_email,omitempty" validate:"omitempty,email"`
	SupplierName    string              `json:"supplier_name,omitempty"`
	TextBody        string              `json:"text_body,omitempty"`
	Attachments     []AttachmentPayload `json:"attachments,omitempty"    validate:"dive"`
}

// IngestResponse defines the accepted response for the ingestion endpoint.
// The job ID is polled on the results endpoint until processing finishes.
type IngestResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
}

// ResultResponse defines the response for the result polling endpoint.
// Data is only present once the job status is "done".
type ResultResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// TokenRequest defines the payload for the token issuance endpoint.
type TokenRequest struct {
	ClientID string `json:"client_id" validate:"required"`
	APIKey   string `json:"api_key"   validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// ClientID is the unique identifier for the authenticated client
	ClientID uuid.UUID `json:"client_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}
