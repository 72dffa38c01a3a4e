package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"searchagent/internal/domain"
	"searchagent/internal/infra/tracer"
)

const (
	// NoResultMessage is returned when the engine yields nothing usable.
	NoResultMessage = "No good search result found"

	maxSummaryLinks = 3
)

// SearchToolConfig holds everything a SearchTool needs. It is built once by
// the caller and never changes afterwards.
type SearchToolConfig struct {
	APIKey   string
	EngineID string
	Goal     string
	Model    domain.ModelSettings
	Endpoint string
	Timeout  time.Duration

	// RequestsPerMin paces outbound searches; 0 leaves them unpaced.
	RequestsPerMin int
	Burst          int
}

// SearchTool answers free-text questions from web search results. It returns
// the top hit's Open Graph description when present, otherwise a summary of
// all result snippets followed by up to three source links.
type SearchTool struct {
	backend    SearchBackend
	summarizer domain.Summarizer
	goal       string
	model      domain.ModelSettings
	logger     *slog.Logger
}

// NewSearchTool validates cfg and returns a tool backed by Google search.
// No network access happens here.
func NewSearchTool(cfg SearchToolConfig, summarizer domain.Summarizer, logger *slog.Logger) (*SearchTool, error) {
	if err := RequireFields("search.api_key", cfg.APIKey, "search.engine_id", cfg.EngineID); err != nil {
		return nil, domain.NewDomainError("NewSearchTool", domain.ErrNotConfigured, err.Error())
	}
	if err := ValidateURL("search.endpoint", cfg.Endpoint); err != nil {
		return nil, domain.NewDomainError("NewSearchTool", domain.ErrNotConfigured, err.Error())
	}
	if err := checkEndpointParams(cfg.Endpoint); err != nil {
		return nil, domain.NewDomainError("NewSearchTool", domain.ErrNotConfigured, err.Error())
	}
	if summarizer == nil {
		return nil, domain.NewDomainError("NewSearchTool", domain.ErrNotConfigured, "summarizer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var backend SearchBackend = NewGoogleSearchBackend(cfg.APIKey, cfg.EngineID, cfg.Endpoint, cfg.Timeout, logger)
	backend = NewRateLimitedBackend(backend, cfg.RequestsPerMin, cfg.Burst)
	return newSearchToolWithBackend(backend, summarizer, cfg.Goal, cfg.Model, logger), nil
}

// checkEndpointParams rejects endpoints that already set a parameter the
// tool sends itself.
func checkEndpointParams(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	q := u.Query()
	for _, name := range []string{"key", "cx", "q"} {
		if q.Has(name) {
			return fmt.Errorf("search.endpoint must not set the %q parameter", name)
		}
	}
	return nil
}

func newSearchToolWithBackend(backend SearchBackend, summarizer domain.Summarizer, goal string, model domain.ModelSettings, logger *slog.Logger) *SearchTool {
	return &SearchTool{
		backend:    backend,
		summarizer: summarizer,
		goal:       goal,
		model:      model,
		logger:     logger,
	}
}

func (t *SearchTool) Name() string { return "search" }

func (t *SearchTool) Description() string {
	return "Search the web for up-to-date information. Input is a search query; " +
		"the result is a short answer, or a summary of the top results followed by source links."
}

func (t *SearchTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "The search query"}
			},
			"required": ["query"]
		}`),
	}
}

type searchParams struct {
	Query string `json:"query"`
}

func (t *SearchTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.search", t.logger, params,
		func(ctx context.Context, span trace.Span, p searchParams) (any, error) {
			span.SetAttributes(tracer.StringAttr("tool.query", p.Query))
			return t.Run(ctx, p.Query)
		},
	)
}

// Run searches for query and produces the tool output. The query is sent
// as given. Transport, decode and summarizer errors are returned unchanged
// in the error chain.
func (t *SearchTool) Run(ctx context.Context, query string) (string, error) {
	resp, err := t.backend.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("search %s: %w", t.backend.Name(), err)
	}

	if len(resp.Items) == 0 {
		t.logger.Debug("search returned no items", "query", query)
		return NoResultMessage, nil
	}

	first := resp.Items[0]
	if desc, ok := first.OpenGraphDescription(); ok {
		t.logger.Debug("search answered from open graph description", "query", query)
		return desc, nil
	}

	if first.Snippet == "" {
		return NoResultMessage, nil
	}

	snippets := make([]string, 0, len(resp.Items))
	for _, it := range resp.Items {
		snippets = append(snippets, it.Snippet)
	}

	summary, err := t.summarizer.Summarize(ctx, t.model, t.goal, query, snippets)
	if err != nil {
		return "", fmt.Errorf("summarize results: %w", err)
	}

	t.logger.Debug("search answered from summary", "query", query, "snippets", len(snippets))
	return formatSummary(summary, resp.Items), nil
}

// formatSummary appends a Links section with the first maxSummaryLinks links.
func formatSummary(summary string, items []SearchResultItem) string {
	var sb strings.Builder
	sb.WriteString(summary)
	sb.WriteString("\n\nLinks:")
	for i, it := range items {
		if i >= maxSummaryLinks {
			break
		}
		sb.WriteString("\n- ")
		sb.WriteString(it.Link)
	}
	return sb.String()
}
