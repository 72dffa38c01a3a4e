package config

import (
	"strings"
	"testing"
)

func TestValidateDefaultsPass(t *testing.T) {
	cfg := Defaults()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Defaults should pass validation: %v", err)
	}
}

func TestValidateMissingSearchCredentialsAllowed(t *testing.T) {
	cfg := Defaults()
	cfg.Search.APIKey = ""
	cfg.Search.EngineID = ""
	if err := Validate(cfg); err != nil {
		t.Errorf("missing credentials are checked by the search tool, got %v", err)
	}
}

func TestValidateSearchEndpoint(t *testing.T) {
	for _, ep := range []string{"ftp://example.com", "not a url", "http://"} {
		cfg := Defaults()
		cfg.Search.Endpoint = ep
		err := Validate(cfg)
		if err == nil {
			t.Errorf("endpoint %q: expected validation error", ep)
			continue
		}
		assertContains(t, err.Error(), "search.endpoint")
	}
}

func TestValidateSearchTimeoutNegative(t *testing.T) {
	cfg := Defaults()
	cfg.Search.Timeout = -1
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "search.timeout must be >= 0")
}

func TestValidateNegativeRateLimit(t *testing.T) {
	cfg := Defaults()
	cfg.Search.RateLimit.Burst = -1
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "search.rate_limit")
}

func TestValidateSummarizerRanges(t *testing.T) {
	cfg := Defaults()
	cfg.Agent.Summarizer.Temperature = 3
	cfg.Agent.Summarizer.MaxTokens = -1
	cfg.Agent.Summarizer.MaxPromptTokens = -1
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "agent.summarizer.temperature")
	assertContains(t, err.Error(), "agent.summarizer.max_tokens")
	assertContains(t, err.Error(), "agent.summarizer.max_prompt_tokens")
}

func TestValidateSummarizerUnknownProvider(t *testing.T) {
	cfg := Defaults()
	cfg.LLM.Providers = []ProviderConfig{{Name: "openai", Type: "openai", APIKey: "k"}}
	cfg.Agent.Summarizer.Provider = "groq"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), `agent.summarizer.provider "groq"`)
}

func TestValidateLLMDefaultProviderEmpty(t *testing.T) {
	cfg := Defaults()
	cfg.LLM.DefaultProvider = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "llm.default_provider must not be empty")
}

func TestValidateLLMProviders(t *testing.T) {
	cfg := Defaults()
	cfg.LLM.DefaultProvider = "missing"
	cfg.LLM.Providers = []ProviderConfig{
		{Name: "", Type: "openai"},
		{Name: "a", Type: "openai", APIKey: "k"},
		{Name: "a", Type: "openai", APIKey: "k"},
		{Name: "b", Type: "anthropic", APIKey: "k"},
		{Name: "c", Type: "openai"},
		{Name: "d", Type: "bedrock"},
		{Name: "local", Type: "ollama"},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	assertContains(t, msg, "llm.providers[0].name must not be empty")
	assertContains(t, msg, `duplicate provider name "a"`)
	assertContains(t, msg, `llm.providers[3].type "anthropic" is invalid`)
	assertContains(t, msg, "SEARCHAGENT_LLM_PROVIDER_C_API_KEY")
	assertContains(t, msg, "region is required for bedrock")
	assertContains(t, msg, `llm.default_provider "missing" does not match`)
	if strings.Contains(msg, "(local): api_key") {
		t.Error("ollama providers should not require an api_key")
	}
}

func TestValidateLogger(t *testing.T) {
	cfg := Defaults()
	cfg.Logger.Level = "verbose"
	cfg.Logger.Format = "xml"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), `logger.level "verbose" is invalid`)
	assertContains(t, err.Error(), `logger.format "xml" is invalid`)
}

func TestValidateLoggerLevelCaseInsensitive(t *testing.T) {
	cfg := Defaults()
	cfg.Logger.Level = "DEBUG"
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateTracerExporter(t *testing.T) {
	cfg := Defaults()
	cfg.Tracer.Exporter = "jaeger"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), `tracer.exporter "jaeger" is invalid`)
}

func TestValidationErrorAccumulates(t *testing.T) {
	cfg := Defaults()
	cfg.LLM.DefaultProvider = ""
	cfg.Logger.Level = "x"
	err := Validate(cfg)
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(ve.Errors), ve.Errors)
	}
	assertContains(t, ve.Error(), "config validation failed:")
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}
