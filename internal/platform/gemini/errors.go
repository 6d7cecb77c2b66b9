package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyDocumentText is returned when a document has no textual content.
	ErrEmptyDocumentText = errors.New("document text cannot be empty")
)
