package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"
	"text/template"
	"time"

	"google.golang.org/genai"

	"github.com/spraicheux/offerflow/internal/config"
	"github.com/spraicheux/offerflow/internal/domain"
	"github.com/spraicheux/offerflow/internal/extraction"
	"github.com/spraicheux/offerflow/internal/platform/metrics"
)

// GeminiExtractor implements the extraction.Extractor interface using
// Google's Gemini API to extract structured offer data from supplier
// documents.
type GeminiExtractor struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// promptTemplate is the parsed template for creating prompts
	promptTemplate *template.Template

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// NewGeminiExtractor creates a new instance of GeminiExtractor with the
// provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - config: LLM configuration containing API key, model name, and other settings
//
// Returns:
//   - A properly initialized GeminiExtractor or an error if initialization fails
func NewGeminiExtractor(ctx context.Context, logger *slog.Logger, config config.LLMConfig) (*GeminiExtractor, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	// Validate configuration
	if config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", extraction.ErrInvalidConfig)
	}

	if config.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", extraction.ErrInvalidConfig)
	}

	if config.PromptTemplatePath == "" {
		return nil, fmt.Errorf("%w: prompt template path cannot be empty", extraction.ErrInvalidConfig)
	}

	// Load and parse prompt template
	templateContent, err := os.ReadFile(config.PromptTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
			extraction.ErrInvalidConfig, config.PromptTemplatePath, err)
	}

	promptTemplate, err := template.New("offer").Parse(string(templateContent))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			extraction.ErrInvalidConfig, err)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			extraction.ErrInvalidConfig, err)
	}

	extractor := &GeminiExtractor{
		logger:         logger,
		config:         config,
		promptTemplate: promptTemplate,
		client:         client,
		model:          config.ModelName,
	}

	return extractor, nil
}

// ExtractOffer parses the provided document and returns the offer items it
// describes.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - doc: The document content to extract offer data from
//
// Returns:
//   - A slice of domain.OfferItem pointers with the extracted fields set
//   - An error if extraction fails for any reason
func (g *GeminiExtractor) ExtractOffer(ctx context.Context, doc extraction.Document) ([]*domain.OfferItem, error) {
	prompt, err := g.createPrompt(ctx, doc)
	if err != nil {
		return nil, err
	}

	response, err := g.callGeminiWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return g.parseResponse(ctx, response)
}

// createPrompt generates a prompt string from the template with the provided
// document content.
func (g *GeminiExtractor) createPrompt(ctx context.Context, doc extraction.Document) (string, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return "", fmt.Errorf("%w: %v", extraction.ErrEmptyDocument, ErrEmptyDocumentText)
	}

	data := promptData{
		Filename:     doc.Filename,
		DocumentText: doc.Text,
	}

	g.logger.DebugContext(ctx, "Generating prompt from template",
		"document_length", len(doc.Text),
		"filename", doc.Filename,
		"template_name", g.promptTemplate.Name())

	var promptBuffer bytes.Buffer
	if err := g.promptTemplate.Execute(&promptBuffer, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	prompt := promptBuffer.String()
	g.logger.DebugContext(ctx, "Prompt generated successfully",
		"prompt_length", len(prompt))

	return prompt, nil
}

// callGeminiWithRetry makes a call to the Gemini API with exponential backoff
// retry logic.
//
// It attempts to call the API up to config.MaxRetries times, using exponential
// backoff with jitter between retries for transient errors. Permanent errors
// (like content being blocked by safety filters) are returned immediately
// without retrying.
func (g *GeminiExtractor) callGeminiWithRetry(ctx context.Context, prompt string) (*ResponseSchema, error) {
	if prompt == "" {
		return nil, ErrEmptyDocumentText
	}

	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	attempt := 0
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "Invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt <= maxRetries {
		attemptNum := attempt + 1 // For logging (1-based)
		g.logger.InfoContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		var response *ResponseSchema
		var err error
		var isTransientError bool

		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			// Assume transient error by default
			isTransientError = true
			g.logger.ErrorContext(ctx, "Gemini API call error",
				"error", err,
				"attempt", attemptNum)
		} else if resp == nil {
			err = fmt.Errorf("%w: nil response", extraction.ErrInvalidResponse)
			isTransientError = false
		} else if len(resp.Candidates) == 0 {
			err = fmt.Errorf("%w: no content generated", extraction.ErrInvalidResponse)
			isTransientError = false
		} else if resp.Candidates[0].Content == nil {
			err = fmt.Errorf("%w: empty content in response", extraction.ErrInvalidResponse)
			isTransientError = false
		} else if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			err = fmt.Errorf("%w: content blocked by safety filters", extraction.ErrContentBlocked)
			isTransientError = false
		} else {
			text := ""
			for _, part := range resp.Candidates[0].Content.Parts {
				if part != nil {
					text += part.Text
				}
			}

			var parsedResponse ResponseSchema
			if err = json.Unmarshal([]byte(stripCodeFence(text)), &parsedResponse); err != nil {
				err = fmt.Errorf("%w: failed to parse JSON response: %v", extraction.ErrInvalidResponse, err)
				isTransientError = false
			} else {
				response = &parsedResponse
			}
		}

		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful",
				"attempt", attemptNum)
			return response, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are returned immediately
		if errors.Is(err, extraction.ErrContentBlocked) || errors.Is(err, extraction.ErrInvalidResponse) {
			g.logger.WarnContext(ctx, "Permanent error occurred, not retrying",
				"error_type", err)
			return nil, err
		}

		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "Maximum retry attempts reached",
				"max_retries", maxRetries)
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				extraction.ErrTransientFailure, maxRetries)
		}

		if !isTransientError {
			g.logger.WarnContext(ctx, "Non-transient error occurred, not retrying")
			return nil, err
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5 // Between 0.5 and 1.0
		delaySeconds := backoffSeconds * jitterFactor
		delay := time.Duration(delaySeconds * float64(time.Second))

		g.logger.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay_seconds", delaySeconds)
		metrics.ExtractionRetriesTotal.Inc()

		select {
		case <-time.After(delay):
			// Continue to next retry
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", extraction.ErrTransientFailure, ctx.Err())
		}

		attempt++
	}

	// Unreachable given the check inside the loop, kept as a safety net
	return nil, fmt.Errorf("%w: failed after %d attempts",
		extraction.ErrTransientFailure, attempt)
}

// parseResponse converts a ResponseSchema from the Gemini API into
// domain.OfferItem objects.
//
// Items are intentionally not validated against the full output contract
// here: identity fields (uid, source channel, product key) and derived
// pricing are filled in by the processing task, and missing extraction
// fields surface as review flags rather than hard failures.
func (g *GeminiExtractor) parseResponse(ctx context.Context, response *ResponseSchema) ([]*domain.OfferItem, error) {
	if response == nil {
		return nil, fmt.Errorf("%w: response is nil", extraction.ErrInvalidResponse)
	}

	if len(response.Items) == 0 {
		return nil, fmt.Errorf("%w: no offer items in response", extraction.ErrInvalidResponse)
	}

	g.logger.InfoContext(ctx, "Parsing Gemini API response",
		"item_count", len(response.Items))

	items := make([]*domain.OfferItem, 0, len(response.Items))
	for _, schema := range response.Items {
		confidence := schema.ConfidenceScore
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}

		item := &domain.OfferItem{
			ProductName:      schema.ProductName,
			Brand:            schema.Brand,
			Category:         schema.Category,
			SubCategory:      schema.SubCategory,
			ProductReference: schema.ProductReference,
			Packaging:        schema.Packaging,
			PackagingRaw:     schema.PackagingRaw,
			BottleOrCanType:  schema.BottleOrCanType,
			GiftBox:          schema.GiftBox,
			UnitVolumeML:     schema.UnitVolumeML,
			UnitsPerCase:     schema.UnitsPerCase,
			CasesPerPallet:   schema.CasesPerPallet,
			QuantityCase:     schema.QuantityCase,
			MOQCases:         schema.MOQCases,
			PricePerCase:     schema.PricePerCase,
			Currency:         schema.Currency,
			Incoterm:         schema.Incoterm,
			Location:         schema.Location,
			LeadTime:         schema.LeadTime,
			OriginCountry:    schema.OriginCountry,
			EANCode:          schema.EANCode,
			AlcoholPercent:   schema.AlcoholPercent,
			Vintage:          schema.Vintage,
			BestBeforeDate:   schema.BestBeforeDate,
			ValidUntil:       schema.ValidUntil,
			RefillableStatus: schema.RefillableStatus,
			LabelLanguage:    schema.LabelLanguage,
			CustomStatus:     schema.CustomStatus,
			SupplierName:     schema.SupplierName,
			SupplierEmail:    schema.SupplierEmail,
			SupplierCountry:  schema.SupplierCountry,
			ConfidenceScore:  confidence,
		}

		items = append(items, item)
		metrics.ExtractionConfidence.Observe(confidence)
		g.logger.DebugContext(ctx, "Extracted offer item from API response",
			"product_name", schema.ProductName,
			"confidence", confidence)
	}

	g.logger.InfoContext(ctx, "Successfully parsed API response",
		"extracted_items", len(items))

	return items, nil
}

// stripCodeFence removes a surrounding markdown code fence if the model
// wrapped its JSON output in one.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
