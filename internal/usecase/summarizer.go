package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"searchagent/internal/domain"
	"searchagent/internal/infra/tracer"
)

const summarizeSystemPrompt = `You condense web search results into a short factual answer.
Use only the information in the numbered results. Do not invent facts or links.
If the results do not answer the question, say so in one sentence.
Output ONLY the answer, no preamble.`

// ProviderResolver looks up an LLM provider by name, falling back to a
// default when the name is empty.
type ProviderResolver interface {
	Resolve(name, fallback string) (domain.LLMProvider, error)
}

// SummarizerConfig controls provider selection and prompt sizing.
type SummarizerConfig struct {
	DefaultProvider string
	// MaxPromptTokens caps the prompt size. Trailing results are left out
	// of the prompt until it fits. Zero disables the check.
	MaxPromptTokens int
}

// LLMSummarizer implements domain.Summarizer on top of a chat model.
type LLMSummarizer struct {
	providers ProviderResolver
	counter   domain.TokenCounter
	config    SummarizerConfig
	logger    *slog.Logger
}

// NewLLMSummarizer creates a summarizer. Prompts are measured and trimmed
// only when counter is non-nil and cfg.MaxPromptTokens is positive.
func NewLLMSummarizer(providers ProviderResolver, counter domain.TokenCounter, cfg SummarizerConfig, logger *slog.Logger) *LLMSummarizer {
	return &LLMSummarizer{
		providers: providers,
		counter:   counter,
		config:    cfg,
		logger:    logger,
	}
}

// Summarize implements domain.Summarizer.
func (s *LLMSummarizer) Summarize(ctx context.Context, settings domain.ModelSettings, goal, query string, snippets []string) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "summarize",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", providerLabel(settings.Provider, s.config.DefaultProvider)),
			tracer.StringAttr("llm.model", settings.Model),
			tracer.IntAttr("summarize.snippets", len(snippets)),
		),
	)
	defer span.End()

	provider, err := s.providers.Resolve(settings.Provider, s.config.DefaultProvider)
	if err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("%w: %w", domain.ErrSummarize, err)
	}

	prompt, tokens := s.fitPrompt(goal, query, snippets, settings.Language)
	if tokens > 0 {
		span.SetAttributes(tracer.IntAttr("summarize.prompt_tokens", tokens))
	}

	resp, err := provider.Chat(ctx, domain.ChatRequest{
		Model: settings.Model,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: summarizeSystemPrompt},
			{Role: domain.RoleUser, Content: prompt},
		},
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("%w: %w", domain.ErrSummarize, err)
	}

	summary := strings.TrimSpace(resp.Message.Content)
	if summary == "" {
		err := domain.NewDomainError("summarize", domain.ErrSummarize, "model returned an empty summary")
		tracer.RecordError(span, err)
		return "", err
	}

	tracer.SetOK(span)
	s.logger.Debug("search results summarized",
		"provider", provider.Name(),
		"snippets", len(snippets),
		"tokens", resp.Usage.TotalTokens,
	)
	return summary, nil
}

// fitPrompt builds the prompt and, when a budget is set, drops trailing
// snippets until it fits. At least one snippet is always kept. The token
// count is 0 when the prompt was not measured.
func (s *LLMSummarizer) fitPrompt(goal, query string, snippets []string, language string) (string, int) {
	prompt := buildSummaryPrompt(goal, query, snippets, language)
	if s.counter == nil || s.config.MaxPromptTokens <= 0 {
		return prompt, 0
	}

	kept := len(snippets)
	tokens := s.counter.CountTokens(prompt)
	for kept > 1 && tokens > s.config.MaxPromptTokens {
		kept--
		prompt = buildSummaryPrompt(goal, query, snippets[:kept], language)
		tokens = s.counter.CountTokens(prompt)
	}
	if kept < len(snippets) {
		s.logger.Warn("summarizer prompt over budget, dropping results",
			"kept", kept,
			"total", len(snippets),
			"max_prompt_tokens", s.config.MaxPromptTokens,
		)
	}
	return prompt, tokens
}

func buildSummaryPrompt(goal, query string, snippets []string, language string) string {
	var sb strings.Builder
	if goal != "" {
		fmt.Fprintf(&sb, "Goal: %s\n", goal)
	}
	fmt.Fprintf(&sb, "Question: %s\n\nSearch results:\n", query)
	for i, snippet := range snippets {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, snippet)
	}
	if language == "" {
		language = "English"
	}
	fmt.Fprintf(&sb, "\nAnswer the question for the goal above in %s.", language)
	return sb.String()
}

func providerLabel(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

var _ domain.Summarizer = (*LLMSummarizer)(nil)
