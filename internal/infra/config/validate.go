package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
//
// Missing search credentials are not reported here; the search tool rejects
// them at construction so that `doctor` can still load and diagnose a config.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateSearch(cfg, ve)
	validateAgent(cfg, ve)
	validateLLM(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateSearch(cfg *Config, ve *ValidationError) {
	if cfg.Search.Endpoint != "" {
		u, err := url.Parse(cfg.Search.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			ve.Add("search.endpoint %q must be an absolute http(s) URL", cfg.Search.Endpoint)
		}
	}
	if cfg.Search.Timeout < 0 {
		ve.Add("search.timeout must be >= 0")
	}
	if cfg.Search.RateLimit.RequestsPerMin < 0 || cfg.Search.RateLimit.Burst < 0 {
		ve.Add("search.rate_limit values must be >= 0")
	}
}

func validateAgent(cfg *Config, ve *ValidationError) {
	s := cfg.Agent.Summarizer
	if s.Temperature < 0 || s.Temperature > 2 {
		ve.Add("agent.summarizer.temperature must be between 0 and 2")
	}
	if s.MaxTokens < 0 {
		ve.Add("agent.summarizer.max_tokens must be >= 0")
	}
	if s.MaxPromptTokens < 0 {
		ve.Add("agent.summarizer.max_prompt_tokens must be >= 0")
	}
	if s.Provider != "" && len(cfg.LLM.Providers) > 0 && !hasProvider(cfg, s.Provider) {
		ve.Add("agent.summarizer.provider %q does not match any configured provider", s.Provider)
	}
}

var validProviderTypes = map[string]bool{
	"openai":     true,
	"openrouter": true,
	"groq":       true,
	"ollama":     true,
	"bedrock":    true,
}

// keylessProviderTypes authenticate without an API key.
var keylessProviderTypes = map[string]bool{
	"ollama":  true,
	"bedrock": true,
}

func validateLLM(cfg *Config, ve *ValidationError) {
	if cfg.LLM.DefaultProvider == "" {
		ve.Add("llm.default_provider must not be empty")
	}

	if len(cfg.LLM.Providers) == 0 {
		return
	}

	seen := make(map[string]bool)
	for i, p := range cfg.LLM.Providers {
		if p.Name == "" {
			ve.Add("llm.providers[%d].name must not be empty", i)
			continue
		}
		if seen[p.Name] {
			ve.Add("llm.providers[%d]: duplicate provider name %q", i, p.Name)
		}
		seen[p.Name] = true

		if p.Type != "" && !validProviderTypes[p.Type] {
			ve.Add("llm.providers[%d].type %q is invalid (want: openai, openrouter, groq, ollama, bedrock)", i, p.Type)
		}
		if p.APIKey == "" && !keylessProviderTypes[p.Type] {
			ve.Add("llm.providers[%d] (%s): api_key is empty (set via %sLLM_PROVIDER_%s_API_KEY)",
				i, p.Name, EnvPrefix, envName(p.Name))
		}
		if p.Type == "bedrock" && p.Region == "" {
			ve.Add("llm.providers[%d] (%s): region is required for bedrock provider", i, p.Name)
		}
	}

	if cfg.LLM.DefaultProvider != "" && !hasProvider(cfg, cfg.LLM.DefaultProvider) {
		ve.Add("llm.default_provider %q does not match any configured provider", cfg.LLM.DefaultProvider)
	}
}

func hasProvider(cfg *Config, name string) bool {
	for _, p := range cfg.LLM.Providers {
		if p.Name == name {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	if !validLogFormats[cfg.Logger.Format] {
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
}

var validExporters = map[string]bool{
	"":       true,
	"noop":   true,
	"stdout": true,
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !validExporters[cfg.Tracer.Exporter] {
		ve.Add("tracer.exporter %q is invalid (want: noop, stdout)", cfg.Tracer.Exporter)
	}
}
