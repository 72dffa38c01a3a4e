//go:build bedrock

package main

import (
	"log/slog"

	"searchagent/internal/adapter/llm"
	"searchagent/internal/domain"
	"searchagent/internal/infra/config"
)

func createBedrockProvider(pc config.ProviderConfig, log *slog.Logger) (domain.LLMProvider, error) {
	return llm.NewBedrockProvider(pc, log)
}
