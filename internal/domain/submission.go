package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus represents the processing state of a submission.
type SubmissionStatus string

// Possible submission status values
const (
	SubmissionStatusPending             SubmissionStatus = "pending"
	SubmissionStatusProcessing          SubmissionStatus = "processing"
	SubmissionStatusCompleted           SubmissionStatus = "completed"
	SubmissionStatusCompletedWithErrors SubmissionStatus = "completed_with_errors"
	SubmissionStatusFailed              SubmissionStatus = "failed"
)

// Source channels a submission can arrive through.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// Common validation errors for Submission
var (
	ErrEmptySubmissionID       = errors.New("submission ID cannot be empty")
	ErrInvalidSourceChannel    = errors.New("source channel must be email or whatsapp")
	ErrEmptySourceMessageID    = errors.New("source message ID cannot be empty")
	ErrInvalidSubmissionStatus = errors.New("invalid submission status")
	ErrEmptySubmissionBody     = errors.New("submission needs a text body or at least one attachment")
)

// Attachment is a document attached to an incoming offer message.
// Data carries inline bytes when the upstream automation already resolved
// the file; otherwise URL points at the media host it can be fetched from.
type Attachment struct {
	Filename    string `json:"filename"`
	URL         string `json:"url,omitempty"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data,omitempty"`
}

// Submission represents one offer document received from an email or
// WhatsApp automation, tracking both the original content and the
// processing state. Its ID doubles as the job ID clients poll results with.
type Submission struct {
	ID              uuid.UUID        `json:"id"`
	SourceChannel   string           `json:"source_channel"`
	SourceMessageID string           `json:"source_message_id"`
	SourceFilename  string           `json:"source_filename"`
	SupplierEmail   string           `json:"supplier_email,omitempty"`
	SupplierName    string           `json:"supplier_name,omitempty"`
	TextBody        string           `json:"text_body,omitempty"`
	Attachments     []Attachment     `json:"attachments,omitempty"`
	Status          SubmissionStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewSubmission creates a new Submission in pending status with a generated
// ID and current timestamps. Returns an error if validation fails.
func NewSubmission(
	sourceChannel, sourceMessageID, sourceFilename string,
	supplierEmail, supplierName, textBody string,
	attachments []Attachment,
) (*Submission, error) {
	now := time.Now().UTC()
	submission := &Submission{
		ID:              uuid.New(),
		SourceChannel:   sourceChannel,
		SourceMessageID: sourceMessageID,
		SourceFilename:  sourceFilename,
		SupplierEmail:   supplierEmail,
		SupplierName:    supplierName,
		TextBody:        textBody,
		Attachments:     attachments,
		Status:          SubmissionStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := submission.Validate(); err != nil {
		return nil, err
	}

	return submission, nil
}

// Validate checks if the Submission has valid data.
// Returns an error if any field fails validation.
func (s *Submission) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySubmissionID
	}

	if s.SourceChannel != ChannelEmail && s.SourceChannel != ChannelWhatsApp {
		return ErrInvalidSourceChannel
	}

	if s.SourceMessageID == "" {
		return ErrEmptySourceMessageID
	}

	if s.TextBody == "" && len(s.Attachments) == 0 {
		return ErrEmptySubmissionBody
	}

	if !isValidSubmissionStatus(s.Status) {
		return ErrInvalidSubmissionStatus
	}

	return nil
}

// UpdateStatus updates the submission's status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (s *Submission) UpdateStatus(status SubmissionStatus) error {
	if !isValidSubmissionStatus(status) {
		return ErrInvalidSubmissionStatus
	}

	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidSubmissionStatus checks if the given status is a valid SubmissionStatus.
func isValidSubmissionStatus(status SubmissionStatus) bool {
	switch status {
	case SubmissionStatusPending, SubmissionStatusProcessing, SubmissionStatusCompleted,
		SubmissionStatusCompletedWithErrors, SubmissionStatusFailed:
		return true
	default:
		return false
	}
}
