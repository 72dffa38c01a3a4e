package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchagent/internal/domain"
	"searchagent/internal/infra/config"
)

// clearEnv blanks every SEARCHAGENT_* variable for the duration of the test.
// Empty values are ignored by config overrides.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if k, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, config.EnvPrefix) {
			t.Setenv(k, "")
		}
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func searchServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "test-cx", r.URL.Query().Get("cx"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func chatServer(t *testing.T, reply string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer llm-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Contains(t, req.Messages[1].Content, "Goal: trip planning")
			assert.Contains(t, req.Messages[1].Content, "1. Paris is the capital and largest city of France.")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": "gpt-4o-mini",
			"choices": []map[string]any{{
				"message": map[string]string{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func appConfig(searchURL, llmURL string) string {
	return `
search:
  api_key: "test-key"
  engine_id: "test-cx"
  endpoint: "` + searchURL + `"
agent:
  goal: "default goal"
  summarizer:
    model: "gpt-4o-mini"
    max_prompt_tokens: 0
llm:
  default_provider: "openai"
  providers:
    - name: "openai"
      type: "openai"
      base_url: "` + llmURL + `"
      api_key: "llm-key"
logger:
  level: "error"
`
}

const snippetResults = `{"items":[
  {"title":"Paris","link":"https://en.wikipedia.org/wiki/Paris","snippet":"Paris is the capital and largest city of France."},
  {"title":"France","link":"https://en.wikipedia.org/wiki/France","snippet":"France is a country in Western Europe."}
]}`

func TestRunQuerySummarizes(t *testing.T) {
	clearEnv(t)
	var llmCalls atomic.Int32
	search := searchServer(t, snippetResults)
	chat := chatServer(t, "Paris is the capital of France.", &llmCalls)
	path := writeConfig(t, appConfig(search.URL, chat.URL))

	var out bytes.Buffer
	err := runQuery(context.Background(), []string{"--config", path, "--goal", "trip planning", "capital of France"}, &out)
	require.NoError(t, err)

	want := "Paris is the capital of France.\n\nLinks:\n" +
		"- https://en.wikipedia.org/wiki/Paris\n" +
		"- https://en.wikipedia.org/wiki/France\n"
	assert.Equal(t, want, out.String())
	assert.Equal(t, int32(1), llmCalls.Load())
}

func TestRunQueryOpenGraphSkipsModel(t *testing.T) {
	clearEnv(t)
	var llmCalls atomic.Int32
	search := searchServer(t, `{"items":[{"link":"https://go.dev","snippet":"s",
		"pagemap":{"metatags":[{"og:description":"Go is an open source programming language."}]}}]}`)
	chat := chatServer(t, "unused", &llmCalls)
	path := writeConfig(t, appConfig(search.URL, chat.URL))

	var out bytes.Buffer
	require.NoError(t, runQuery(context.Background(), []string{"--config=" + path, "golang"}, &out))

	assert.Equal(t, "Go is an open source programming language.\n", out.String())
	assert.Zero(t, llmCalls.Load())
}

func TestRunQueryNoResults(t *testing.T) {
	clearEnv(t)
	var llmCalls atomic.Int32
	search := searchServer(t, `{"searchInformation":{"totalResults":"0"}}`)
	chat := chatServer(t, "unused", &llmCalls)
	path := writeConfig(t, appConfig(search.URL, chat.URL))

	var out bytes.Buffer
	require.NoError(t, runQuery(context.Background(), []string{"--config", path, "zzzz"}, &out))
	assert.Equal(t, "No good search result found\n", out.String())
}

func TestRunQueryRender(t *testing.T) {
	clearEnv(t)
	var llmCalls atomic.Int32
	search := searchServer(t, snippetResults)
	chat := chatServer(t, "**Paris** is the capital.", &llmCalls)
	path := writeConfig(t, appConfig(search.URL, chat.URL))

	var out bytes.Buffer
	require.NoError(t, runQuery(context.Background(), []string{"--config", path, "--goal", "trip planning", "--render", "q"}, &out))

	assert.Contains(t, out.String(), "Paris")
	assert.NotContains(t, out.String(), "**Paris**", "markdown should be rendered")
}

func TestRunQueryModelFailure(t *testing.T) {
	clearEnv(t)
	search := searchServer(t, snippetResults)
	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"slow down"}`, http.StatusTooManyRequests)
	}))
	defer chat.Close()
	path := writeConfig(t, appConfig(search.URL, chat.URL))

	err := runQuery(context.Background(), []string{"--config", path, "q"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
	assert.Contains(t, err.Error(), "may succeed on retry")
}

func TestNewAppRequiresSearchCredentials(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "logger:\n  level: error\n")

	_, err := newApp(context.Background(), path, appOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestNewAppInvalidConfig(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "logger:\n  level: loud\n")

	_, err := newApp(context.Background(), path, appOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigLoad)
}

func TestNewAppProtocolStdoutMovesLogs(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
search:
  api_key: "k"
  engine_id: "cx"
agent:
  summarizer:
    max_prompt_tokens: 0
logger:
  output: "stdout"
`)

	a, err := newApp(context.Background(), path, appOptions{ProtocolStdout: true})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "stderr", a.cfg.Logger.Output)
	tools := a.tools.List()
	require.Len(t, tools, 1)
	assert.Equal(t, "search", tools[0].Name())
}

func TestSearchToolConfigMapping(t *testing.T) {
	cfg := config.Defaults()
	cfg.Search.APIKey = "k"
	cfg.Search.EngineID = "cx"
	cfg.Search.RateLimit = config.RateLimitConfig{RequestsPerMin: 60, Burst: 2}
	cfg.Agent.Goal = "g"
	cfg.Agent.Summarizer.Provider = "groq"

	tc := searchToolConfig(cfg)
	assert.Equal(t, "k", tc.APIKey)
	assert.Equal(t, "cx", tc.EngineID)
	assert.Equal(t, "g", tc.Goal)
	assert.Equal(t, config.DefaultSearchEndpoint, tc.Endpoint)
	assert.Equal(t, 60, tc.RequestsPerMin)
	assert.Equal(t, 2, tc.Burst)
	assert.Equal(t, domain.ModelSettings{
		Provider:    "groq",
		Temperature: 0.2,
		MaxTokens:   512,
		Language:    "English",
	}, tc.Model)
}

func TestInitLLM(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.CircuitBreaker.Enabled = true
	cfg.LLM.Providers = []config.ProviderConfig{
		{Name: "openai", Type: "openai", APIKey: "k"},
		{Name: "local", Type: "ollama"},
	}

	reg, err := initLLM(cfg, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "openai"}, reg.List())
}

func TestInitLLMUnsupportedType(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.Providers = []config.ProviderConfig{{Name: "x", Type: "carrier-pigeon"}}

	_, err := initLLM(cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider type")
}
