package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"searchagent/internal/infra/config"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string
}

// Check is a named health check.
type Check struct {
	Name string
	Fn   func(ctx context.Context, cfg *config.Config) CheckResult
}

// doctorHTTPClient is used for reachability checks.
var doctorHTTPClient = &http.Client{Timeout: 10 * time.Second}

// runDoctor executes all health checks and writes a report to out.
func runDoctor(ctx context.Context, args []string, out io.Writer) error {
	flags, _, err := parseCommonFlags(args)
	if err != nil {
		return err
	}

	// Some checks still run when the config does not load.
	cfg, cfgErr := config.Load(flags.ConfigPath)

	checks := []Check{
		{Name: "Config file", Fn: checkConfigFile(flags.ConfigPath, cfgErr)},
		{Name: "Search credentials", Fn: checkSearchCredentials},
		{Name: "Search endpoint", Fn: checkSearchEndpoint},
		{Name: "LLM API key", Fn: checkLLMAPIKey},
		{Name: "Summarizer provider", Fn: checkSummarizerProvider},
	}

	return report(ctx, out, cfg, checks)
}

func report(ctx context.Context, out io.Writer, cfg *config.Config, checks []Check) error {
	fmt.Fprintln(out, "searchagent doctor")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out)

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(ctx, cfg)
		result.Name = check.Name

		fmt.Fprintf(out, "  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Fprintf(out, "      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("-", 50))
	fmt.Fprintf(out, "Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		return fmt.Errorf("%d check(s) failed", fail)
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

var notLoaded = CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}

// checkConfigFile reports whether the config file exists and loads.
// A missing file is only a warning: env vars alone are a valid setup.
func checkConfigFile(cfgPath string, cfgErr error) func(context.Context, *config.Config) CheckResult {
	return func(context.Context, *config.Config) CheckResult {
		if cfgErr != nil {
			var ve *config.ValidationError
			fix := "Check config.yaml syntax and file permissions (0600)"
			if errors.As(cfgErr, &ve) {
				fix = "Correct the listed fields in config.yaml or the SEARCHAGENT_* environment"
			}
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     fix,
			}
		}

		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("no config file at %s, using defaults and environment", cfgPath),
			}
		}

		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("config loaded from %s", cfgPath),
		}
	}
}

// checkSearchCredentials verifies the search API key and engine id are set.
func checkSearchCredentials(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}

	var missing []string
	if cfg.Search.APIKey == "" {
		missing = append(missing, "search.api_key")
	}
	if cfg.Search.EngineID == "" {
		missing = append(missing, "search.engine_id")
	}
	if len(missing) > 0 {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("missing %s", strings.Join(missing, ", ")),
			Fix:     "Set SEARCHAGENT_SEARCH_API_KEY and SEARCHAGENT_SEARCH_ENGINE_ID",
		}
	}

	return CheckResult{Status: StatusPass, Message: "api key and engine id configured"}
}

// checkSearchEndpoint checks the search endpoint without credentials.
// Any HTTP answer, even 400 or 403, proves the endpoint is reachable.
func checkSearchEndpoint(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Search.Endpoint, nil)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("invalid search endpoint: %v", err),
		}
	}

	start := time.Now()
	resp, err := doctorHTTPClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("cannot reach %s: %v", cfg.Search.Endpoint, err),
			Fix:     "Check your internet connection, proxy and firewall settings",
		}
	}
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("search endpoint answered %d", resp.StatusCode),
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s reachable (latency: %dms)", cfg.Search.Endpoint, latency.Milliseconds()),
	}
}

// checkLLMAPIKey verifies that providers which need a key have one.
func checkLLMAPIKey(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}

	if len(cfg.LLM.Providers) == 0 {
		return CheckResult{
			Status:  StatusWarn,
			Message: "no LLM providers configured, only Open Graph answers are possible",
			Fix:     "Add a provider under llm.providers in config.yaml",
		}
	}

	var withKey, withoutKey []string
	for _, p := range cfg.LLM.Providers {
		switch {
		case p.APIKey != "" || !needsAPIKey(p.Type):
			withKey = append(withKey, p.Name)
		default:
			withoutKey = append(withoutKey, p.Name)
		}
	}

	if len(withKey) == 0 {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("no API keys found for providers: %s", strings.Join(withoutKey, ", ")),
			Fix:     "Set keys via SEARCHAGENT_LLM_PROVIDER_<NAME>_API_KEY",
		}
	}
	if len(withoutKey) > 0 {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("keys configured for [%s]; missing for [%s]", strings.Join(withKey, ", "), strings.Join(withoutKey, ", ")),
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("credentials available for: %s", strings.Join(withKey, ", ")),
	}
}

// checkSummarizerProvider verifies the summarizer resolves to a configured provider.
func checkSummarizerProvider(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return notLoaded
	}
	if len(cfg.LLM.Providers) == 0 {
		return CheckResult{Status: StatusWarn, Message: "skipped, no LLM providers configured"}
	}

	name := cfg.Agent.Summarizer.Provider
	if name == "" {
		name = cfg.LLM.DefaultProvider
	}
	for _, p := range cfg.LLM.Providers {
		if p.Name == name {
			model := cfg.Agent.Summarizer.Model
			if model == "" {
				model = p.Model
			}
			return CheckResult{
				Status:  StatusPass,
				Message: fmt.Sprintf("summaries use %s (%s)", name, model),
			}
		}
	}

	return CheckResult{
		Status:  StatusFail,
		Message: fmt.Sprintf("provider %q not found in llm.providers", name),
		Fix:     "Set agent.summarizer.provider or llm.default_provider to a configured provider",
	}
}

func needsAPIKey(providerType string) bool {
	return providerType != "ollama" && providerType != "bedrock"
}
