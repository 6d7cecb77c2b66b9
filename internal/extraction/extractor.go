package extraction

import (
	"context"

	"github.com/spraicheux/offerflow/internal/domain"
)

// Document is one unit of supplier input handed to the extractor: either the
// text body of an inbound message or the decoded content of an attachment.
type Document struct {
	// Filename is the attachment filename, or empty for a message body.
	Filename string

	// ContentType is the declared MIME type of the content.
	ContentType string

	// Text is the textual content to extract offer data from.
	Text string
}

// Extractor defines the interface for extracting structured offer data from
// supplier documents. This interface serves as a boundary between the
// application core and external AI/LLM services, following the hexagonal
// architecture pattern.
type Extractor interface {
	// ExtractOffer parses the provided document and returns the offer items
	// it describes.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - doc: The document content to extract offer data from
	//
	// Returns:
	//   - A slice of domain.OfferItem pointers with the extracted fields set
	//   - An error if extraction fails for any reason (see errors.go for
	//     specific types)
	ExtractOffer(ctx context.Context, doc Document) ([]*domain.OfferItem, error)
}
