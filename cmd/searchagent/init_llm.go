package main

import (
	"fmt"
	"log/slog"

	"searchagent/internal/adapter/llm"
	"searchagent/internal/domain"
	"searchagent/internal/infra/config"
)

// initLLM builds the provider registry used by the summarizer.
// An empty provider list is allowed: Open Graph answers need no model.
func initLLM(cfg *config.Config, log *slog.Logger) (*llm.Registry, error) {
	registry := llm.NewRegistry()

	cbCfg := cfg.LLM.CircuitBreaker
	for _, pc := range cfg.LLM.Providers {
		provider, err := createLLMProvider(pc, log)
		if err != nil {
			return nil, fmt.Errorf("llm provider %s: %w", pc.Name, err)
		}

		if cbCfg.Enabled {
			provider = llm.NewCircuitBreakerProvider(provider, cbCfg, log)
		}

		if err := registry.Register(provider); err != nil {
			return nil, fmt.Errorf("llm provider %s: %w", pc.Name, err)
		}
	}

	if len(cfg.LLM.Providers) == 0 {
		log.Warn("no llm providers configured; results without an Open Graph description cannot be summarized")
	}
	if cbCfg.Enabled {
		log.Info("llm circuit breaker enabled",
			"max_failures", cbCfg.MaxFailures,
			"timeout", cbCfg.Timeout,
			"interval", cbCfg.Interval,
		)
	}

	return registry, nil
}

func createLLMProvider(pc config.ProviderConfig, log *slog.Logger) (domain.LLMProvider, error) {
	switch pc.Type {
	case "openai", "openrouter", "groq", "ollama", "":
		return llm.NewOpenAIProvider(pc, log), nil
	case "bedrock":
		return createBedrockProvider(pc, log)
	default:
		return nil, fmt.Errorf("unsupported provider type %q", pc.Type)
	}
}
