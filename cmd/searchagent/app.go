package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"searchagent/internal/adapter/llm"
	"searchagent/internal/adapter/tool"
	"searchagent/internal/domain"
	"searchagent/internal/infra/config"
	"searchagent/internal/infra/logger"
	"searchagent/internal/infra/tracer"
	"searchagent/internal/usecase"
)

const tokenizerLoadTimeout = 10 * time.Second

// app holds the wired components shared by the query and mcp commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	tools  *tool.Registry
	search *tool.SearchTool

	closers []func() error
}

// appOptions tweak bootstrap for a specific command.
type appOptions struct {
	// Goal overrides agent.goal when non-empty.
	Goal string
	// ProtocolStdout marks stdout as reserved for a wire protocol, so logs
	// and span dumps are redirected to stderr.
	ProtocolStdout bool
}

// newApp loads configuration and wires logger, tracer, LLM providers,
// summarizer and the search tool.
func newApp(ctx context.Context, cfgPath string, opts appOptions) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfigLoad, err)
	}
	if opts.Goal != "" {
		cfg.Agent.Goal = opts.Goal
	}

	a := &app{cfg: cfg}

	if opts.ProtocolStdout && cfg.Logger.Output == "stdout" {
		cfg.Logger.Output = "stderr"
	}
	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a.logger = log
	a.closers = append(a.closers, closeLog)

	var spanOut io.Writer = os.Stdout
	if opts.ProtocolStdout {
		spanOut = os.Stderr
	}
	shutdown, err := tracer.Setup(ctx, cfg.Tracer, spanOut)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.closers = append(a.closers, func() error { return shutdown(context.Background()) })

	providers, err := initLLM(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	s := cfg.Agent.Summarizer
	counter := llm.NewTiktokenCounter(s.Model)
	summarizer := usecase.NewLLMSummarizer(providers,
		counter,
		usecase.SummarizerConfig{
			DefaultProvider: cfg.LLM.DefaultProvider,
			MaxPromptTokens: s.MaxPromptTokens,
		}, log)

	search, err := tool.NewSearchTool(searchToolConfig(cfg), summarizer, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.search = search

	if s.MaxPromptTokens > 0 {
		loadTokenizer(ctx, counter, log)
	}

	a.tools = tool.NewRegistry(log)
	if err := a.tools.Register(search); err != nil {
		a.Close()
		return nil, err
	}

	log.Debug("searchagent initialized",
		"config", cfgPath,
		"llm_providers", providers.List(),
		"default_provider", cfg.LLM.DefaultProvider,
	)
	return a, nil
}

// loadTokenizer switches counter to exact counts. Failure only costs
// precision: the counter keeps estimating.
func loadTokenizer(ctx context.Context, counter *llm.TiktokenCounter, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, tokenizerLoadTimeout)
	defer cancel()
	if err := counter.Load(ctx); err != nil {
		log.Warn("tokenizer unavailable, estimating prompt size", "error", err)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// searchToolConfig maps the loaded configuration onto the tool's own config.
func searchToolConfig(cfg *config.Config) tool.SearchToolConfig {
	return tool.SearchToolConfig{
		APIKey:         cfg.Search.APIKey,
		EngineID:       cfg.Search.EngineID,
		Goal:           cfg.Agent.Goal,
		Model:          modelSettings(cfg.Agent.Summarizer),
		Endpoint:       cfg.Search.Endpoint,
		Timeout:        cfg.Search.Timeout,
		RequestsPerMin: cfg.Search.RateLimit.RequestsPerMin,
		Burst:          cfg.Search.RateLimit.Burst,
	}
}

func modelSettings(s config.SummarizerConfig) domain.ModelSettings {
	return domain.ModelSettings{
		Provider:    s.Provider,
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Language:    s.Language,
	}
}
