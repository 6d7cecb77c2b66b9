package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spraicheux/offerflow/internal/platform/redis"
	"github.com/spraicheux/offerflow/internal/service"
	"github.com/spraicheux/offerflow/internal/service/auth"
	"github.com/spraicheux/offerflow/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"submission not found", service.ErrSubmissionNotFound, http.StatusNotFound},
		{"client not found", store.ErrClientNotFound, http.StatusNotFound},
		{"job not found", redis.ErrJobNotFound, http.StatusNotFound},
		{"duplicate submission", service.ErrDuplicateSubmission, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("lookup: %w", service.ErrSubmissionNotFound), http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Invalid token", GetSafeErrorMessage(auth.ErrExpiredToken))
	assert.Equal(t, "Job not found", GetSafeErrorMessage(service.ErrSubmissionNotFound))
	assert.Equal(t, "Submission already exists", GetSafeErrorMessage(service.ErrDuplicateSubmission))

	// Internal details never leak through
	leaky := errors.New("pq: relation submissions does not exist")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(leaky))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	validationErr := errors.New(
		"Key: 'IngestRequest.SourceChannel' Error:Field validation for 'SourceChannel' failed on the 'oneof' tag")
	assert.Equal(t, "Invalid SourceChannel: invalid value", SanitizeValidationError(validationErr))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
