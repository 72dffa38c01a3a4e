package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"searchagent/internal/domain"
	"searchagent/internal/infra/config"
	"searchagent/internal/infra/tracer"
)

const (
	defaultSearchTimeout = 15 * time.Second
	maxSearchBodySize    = 2 * 1024 * 1024 // 2MB
	maxLoggedBodySize    = 512
)

// GoogleSearchBackend queries Google Programmable Search.
type GoogleSearchBackend struct {
	client   *http.Client
	endpoint string
	// baseQuery holds parameters already present in the configured endpoint.
	baseQuery string
	apiKey    string
	engineID string
	logger   *slog.Logger
}

// NewGoogleSearchBackend creates a backend for the given credentials.
// An empty endpoint selects config.DefaultSearchEndpoint; a zero timeout
// selects 15s. Query parameters in endpoint are kept ahead of key, cx and q.
func NewGoogleSearchBackend(apiKey, engineID, endpoint string, timeout time.Duration, logger *slog.Logger) *GoogleSearchBackend {
	if endpoint == "" {
		endpoint = config.DefaultSearchEndpoint
	}
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	var baseQuery string
	if base, raw, ok := strings.Cut(endpoint, "?"); ok {
		endpoint, baseQuery = base, raw
	}
	return &GoogleSearchBackend{
		client:    &http.Client{Timeout: timeout},
		endpoint:  endpoint,
		baseQuery: baseQuery,
		apiKey:    apiKey,
		engineID:  engineID,
		logger:    logger,
	}
}

func (b *GoogleSearchBackend) Name() string { return "google" }

// Search issues a single GET and decodes the body. A non-2xx status is logged
// and the body is still decoded, so an error payload without items degrades to
// an empty response instead of failing the call.
func (b *GoogleSearchBackend) Search(ctx context.Context, query string) (*SearchResponse, error) {
	ctx, span := tracer.StartSpan(ctx, "search.google",
		trace.WithAttributes(tracer.StringAttr("search.backend", b.Name())),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint, nil)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.URL.RawQuery = buildSearchQuery(b.apiKey, b.engineID, query)
	if b.baseQuery != "" {
		req.URL.RawQuery = b.baseQuery + "&" + req.URL.RawQuery
	}

	resp, err := b.client.Do(req)
	if err != nil {
		// *url.Error embeds the full request URL, which carries the API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = b.endpoint
		}
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBodySize))
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrSearchRequest, err)
	}

	span.SetAttributes(tracer.IntAttr("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b.logger.Warn("google search returned non-success status",
			"status", resp.StatusCode,
			"body", truncate(string(body), maxLoggedBodySize),
		)
	}

	var out SearchResponse
	if len(bytes.TrimSpace(body)) == 0 {
		tracer.SetOK(span)
		return &out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchResponse, err)
	}

	span.SetAttributes(tracer.IntAttr("search.items", len(out.Items)))
	tracer.SetOK(span)
	b.logger.Debug("google search completed", "status", resp.StatusCode, "items", len(out.Items))
	return &out, nil
}

// buildSearchQuery encodes the key, cx and q parameters in that order.
// Spaces become %20 rather than the form-encoding "+".
func buildSearchQuery(apiKey, engineID, query string) string {
	return "key=" + escapeParam(apiKey) +
		"&cx=" + escapeParam(engineID) +
		"&q=" + escapeParam(query)
}

func escapeParam(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
