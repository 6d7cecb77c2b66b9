package dialog360

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spraicheux/offerflow/internal/config"
	"github.com/spraicheux/offerflow/internal/domain"
)

// metaLookasideHost is the host Meta puts in webhook media URLs. Those links
// reject direct requests, so they are rewritten to the 360dialog media proxy.
const (
	metaLookasideHost = "lookaside.fbsbx.com"
	dialogMediaHost   = "waba-v2.360dialog.io"
)

// Error definitions for the dialog360 package.
var (
	// ErrNoContent is returned when an attachment has neither inline data nor a URL.
	ErrNoContent = errors.New("attachment has no inline data and no URL")

	// ErrDownloadFailed is returned when the media endpoint responds with a non-2xx status.
	ErrDownloadFailed = errors.New("media download failed")
)

// Downloader resolves attachment content: inline data is passed through,
// URL-only attachments are fetched over HTTP.
type Downloader interface {
	// Fetch returns the raw bytes of the attachment content.
	Fetch(ctx context.Context, att domain.Attachment) ([]byte, error)
}

// MediaDownloader fetches WhatsApp media through the 360dialog API and plain
// HTTP attachments directly.
type MediaDownloader struct {
	logger *slog.Logger
	apiKey string
	client *http.Client
}

// NewMediaDownloader creates a MediaDownloader with the configured timeout
// and 360dialog API key.
func NewMediaDownloader(logger *slog.Logger, cfg config.MediaConfig) *MediaDownloader {
	timeout := time.Duration(cfg.DownloadTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &MediaDownloader{
		logger: logger,
		apiKey: cfg.D360APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch returns the content of an attachment. Inline data short-circuits the
// network entirely; otherwise the attachment URL is fetched, with Meta
// lookaside URLs rewritten to the 360dialog media proxy first.
func (d *MediaDownloader) Fetch(ctx context.Context, att domain.Attachment) ([]byte, error) {
	if len(att.Data) > 0 {
		return att.Data, nil
	}

	if att.URL == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoContent, att.Filename)
	}

	fetchURL, rewritten, err := rewriteMediaURL(att.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid attachment URL %q: %w", att.URL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build media request: %w", err)
	}
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}
	// Some media hosts reject the default Go user agent
	req.Header.Set("User-Agent", "curl/7.64.1")

	d.logger.DebugContext(ctx, "Downloading attachment",
		"filename", att.Filename,
		"rewritten", rewritten)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d for %s", ErrDownloadFailed, resp.StatusCode, att.Filename)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media body: %w", err)
	}

	d.logger.DebugContext(ctx, "Attachment downloaded",
		"filename", att.Filename,
		"bytes", len(body))

	return body, nil
}

// rewriteMediaURL swaps the Meta lookaside host for the 360dialog media
// proxy host. Other URLs pass through untouched. The second return value
// reports whether a rewrite happened.
func rewriteMediaURL(raw string) (string, bool, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false, err
	}

	if !strings.EqualFold(parsed.Host, metaLookasideHost) {
		return raw, false, nil
	}

	parsed.Scheme = "https"
	parsed.Host = dialogMediaHost
	return parsed.String(), true, nil
}
