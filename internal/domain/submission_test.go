package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubmission(t *testing.T) {
	t.Parallel()

	t.Run("valid email submission", func(t *testing.T) {
		t.Parallel()

		sub, err := NewSubmission(
			ChannelEmail, "msg-123", "offer.pdf",
			"sales@supplier.example", "Supplier BV", "10 pallets Cava, EUR 19.60/case",
			nil,
		)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, sub.ID)
		assert.Equal(t, SubmissionStatusPending, sub.Status)
		assert.Equal(t, ChannelEmail, sub.SourceChannel)
		assert.False(t, sub.CreatedAt.IsZero())
		assert.Equal(t, sub.CreatedAt, sub.UpdatedAt)
	})

	t.Run("valid whatsapp submission with attachment only", func(t *testing.T) {
		t.Parallel()

		sub, err := NewSubmission(
			ChannelWhatsApp, "wamid.456", "pricelist.pdf",
			"", "", "",
			[]Attachment{{Filename: "pricelist.pdf", URL: "https://example.com/m/1", ContentType: "application/pdf"}},
		)

		require.NoError(t, err)
		assert.Len(t, sub.Attachments, 1)
	})

	t.Run("invalid channel", func(t *testing.T) {
		t.Parallel()

		_, err := NewSubmission("sms", "msg-1", "a.pdf", "", "", "text", nil)
		assert.ErrorIs(t, err, ErrInvalidSourceChannel)
	})

	t.Run("missing source message id", func(t *testing.T) {
		t.Parallel()

		_, err := NewSubmission(ChannelEmail, "", "a.pdf", "", "", "text", nil)
		assert.ErrorIs(t, err, ErrEmptySourceMessageID)
	})

	t.Run("no body and no attachments", func(t *testing.T) {
		t.Parallel()

		_, err := NewSubmission(ChannelEmail, "msg-1", "a.pdf", "", "", "", nil)
		assert.ErrorIs(t, err, ErrEmptySubmissionBody)
	})
}

func TestSubmissionUpdateStatus(t *testing.T) {
	t.Parallel()

	sub, err := NewSubmission(ChannelEmail, "msg-1", "a.pdf", "", "", "text", nil)
	require.NoError(t, err)

	before := sub.UpdatedAt

	for _, status := range []SubmissionStatus{
		SubmissionStatusProcessing,
		SubmissionStatusCompleted,
		SubmissionStatusCompletedWithErrors,
		SubmissionStatusFailed,
		SubmissionStatusPending,
	} {
		require.NoError(t, sub.UpdateStatus(status))
		assert.Equal(t, status, sub.Status)
	}

	assert.False(t, sub.UpdatedAt.Before(before))

	err = sub.UpdateStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidSubmissionStatus)
}

func TestSubmissionValidate(t *testing.T) {
	t.Parallel()

	valid := Submission{
		ID:              uuid.New(),
		SourceChannel:   ChannelWhatsApp,
		SourceMessageID: "wamid.1",
		TextBody:        "offer text",
		Status:          SubmissionStatusPending,
	}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		s := valid
		assert.NoError(t, s.Validate())
	})

	t.Run("nil id", func(t *testing.T) {
		t.Parallel()
		s := valid
		s.ID = uuid.Nil
		assert.ErrorIs(t, s.Validate(), ErrEmptySubmissionID)
	})

	t.Run("bad status", func(t *testing.T) {
		t.Parallel()
		s := valid
		s.Status = "done"
		assert.ErrorIs(t, s.Validate(), ErrInvalidSubmissionStatus)
	})
}
