package gemini

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spraicheux/offerflow/internal/config"
	"github.com/spraicheux/offerflow/internal/extraction"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewGeminiExtractorValidation(t *testing.T) {
	t.Parallel()

	templatePath := writeTemplate(t, "Extract offers from: {{.DocumentText}}")

	cases := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr string
	}{
		{
			name: "missing API key",
			cfg: config.LLMConfig{
				ModelName:          "gemini-2.0-flash",
				PromptTemplatePath: templatePath,
			},
			wantErr: "gemini API key cannot be empty",
		},
		{
			name: "missing model name",
			cfg: config.LLMConfig{
				GeminiAPIKey:       "test-key",
				PromptTemplatePath: templatePath,
			},
			wantErr: "model name cannot be empty",
		},
		{
			name: "missing template path",
			cfg: config.LLMConfig{
				GeminiAPIKey: "test-key",
				ModelName:    "gemini-2.0-flash",
			},
			wantErr: "prompt template path cannot be empty",
		},
		{
			name: "nonexistent template file",
			cfg: config.LLMConfig{
				GeminiAPIKey:       "test-key",
				ModelName:          "gemini-2.0-flash",
				PromptTemplatePath: "/nonexistent/prompt.tmpl",
			},
			wantErr: "failed to read prompt template",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewGeminiExtractor(context.Background(), testLogger(), tc.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, extraction.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewGeminiExtractorNilLogger(t *testing.T) {
	t.Parallel()

	_, err := NewGeminiExtractor(context.Background(), nil, config.LLMConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger cannot be nil")
}

func TestCreatePrompt(t *testing.T) {
	t.Parallel()

	templatePath := writeTemplate(t, "File: {{.Filename}}\nContent:\n{{.DocumentText}}")

	extractor, err := NewGeminiExtractor(context.Background(), testLogger(), config.LLMConfig{
		GeminiAPIKey:       "test-key",
		ModelName:          "gemini-2.0-flash",
		PromptTemplatePath: templatePath,
	})
	require.NoError(t, err)

	t.Run("renders document into template", func(t *testing.T) {
		t.Parallel()
		prompt, err := extractor.createPrompt(context.Background(), extraction.Document{
			Filename: "offer.pdf",
			Text:     "Freixenet Carta Nevada 6x75cl 19.60 EUR",
		})
		require.NoError(t, err)
		assert.Contains(t, prompt, "File: offer.pdf")
		assert.Contains(t, prompt, "Freixenet Carta Nevada")
	})

	t.Run("rejects empty document", func(t *testing.T) {
		t.Parallel()
		_, err := extractor.createPrompt(context.Background(), extraction.Document{Text: "   "})
		assert.ErrorIs(t, err, extraction.ErrEmptyDocument)
	})
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	templatePath := writeTemplate(t, "{{.DocumentText}}")
	extractor, err := NewGeminiExtractor(context.Background(), testLogger(), config.LLMConfig{
		GeminiAPIKey:       "test-key",
		ModelName:          "gemini-2.0-flash",
		PromptTemplatePath: templatePath,
	})
	require.NoError(t, err)

	t.Run("maps schema fields onto offer items", func(t *testing.T) {
		t.Parallel()

		brand := "Freixenet"
		price := 19.60
		currency := "EUR"
		units := 6

		items, err := extractor.parseResponse(context.Background(), &ResponseSchema{
			Items: []ItemSchema{
				{
					ProductName:     "Freixenet Carta Nevada Extra Dry",
					Brand:           &brand,
					PricePerCase:    &price,
					Currency:        &currency,
					UnitsPerCase:    &units,
					ConfidenceScore: 0.92,
				},
			},
		})
		require.NoError(t, err)
		require.Len(t, items, 1)

		item := items[0]
		assert.Equal(t, "Freixenet Carta Nevada Extra Dry", item.ProductName)
		require.NotNil(t, item.Brand)
		assert.Equal(t, "Freixenet", *item.Brand)
		require.NotNil(t, item.PricePerCase)
		assert.InDelta(t, 19.60, *item.PricePerCase, 0.0001)
		assert.InDelta(t, 0.92, item.ConfidenceScore, 0.0001)
	})

	t.Run("clamps confidence into range", func(t *testing.T) {
		t.Parallel()

		items, err := extractor.parseResponse(context.Background(), &ResponseSchema{
			Items: []ItemSchema{
				{ProductName: "A", ConfidenceScore: 1.7},
				{ProductName: "B", ConfidenceScore: -0.2},
			},
		})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, 1.0, items[0].ConfidenceScore)
		assert.Equal(t, 0.0, items[1].ConfidenceScore)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		_, err := extractor.parseResponse(context.Background(), nil)
		assert.ErrorIs(t, err, extraction.ErrInvalidResponse)
	})

	t.Run("empty item list", func(t *testing.T) {
		t.Parallel()
		_, err := extractor.parseResponse(context.Background(), &ResponseSchema{})
		assert.ErrorIs(t, err, extraction.ErrInvalidResponse)
	})
}

func TestStripCodeFence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare JSON", `{"items":[]}`, `{"items":[]}`},
		{"fenced with language", "```json\n{\"items\":[]}\n```", `{"items":[]}`},
		{"fenced without language", "```\n{\"items\":[]}\n```", `{"items":[]}`},
		{"surrounding whitespace", "  {\"items\":[]}\n", `{"items":[]}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, stripCodeFence(tc.in))
		})
	}
}
