package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"searchagent/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func respond(status int, body string) roundTripFunc {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	}
}

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limit", http.StatusTooManyRequests, domain.ErrRateLimit},
		{"unauthorized", http.StatusUnauthorized, domain.ErrAuthInvalid},
		{"forbidden", http.StatusForbidden, domain.ErrAuthInvalid},
		{"too large", http.StatusRequestEntityTooLarge, domain.ErrContextOverflow},
		{"internal", http.StatusInternalServerError, domain.ErrProviderError},
		{"bad gateway", http.StatusBadGateway, domain.ErrProviderError},
		{"unavailable", http.StatusServiceUnavailable, domain.ErrProviderError},
		{"teapot", http.StatusTeapot, domain.ErrProviderError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapHTTPError(tt.status, []byte(`{"error":"x"}`))
			if !errors.Is(err, tt.want) {
				t.Errorf("mapHTTPError(%d) = %v, want %v", tt.status, err, tt.want)
			}
		})
	}
}

func TestMapHTTPErrorIncludesBody(t *testing.T) {
	err := mapHTTPError(http.StatusTooManyRequests, []byte(`{"error":{"message":"slow down"}}`))
	if !strings.Contains(err.Error(), "API error 429") || !strings.Contains(err.Error(), "slow down") {
		t.Errorf("error = %q, want status and body", err.Error())
	}
}

func TestMapHTTPErrorClipsLargeBody(t *testing.T) {
	err := mapHTTPError(http.StatusBadGateway, []byte(strings.Repeat("x", 10*maxErrorDetail)))
	if len(err.Error()) > 2*maxErrorDetail {
		t.Errorf("error text not clipped: %d bytes", len(err.Error()))
	}
}

func TestClip(t *testing.T) {
	if got := clip([]byte("short"), 10); got != "short" {
		t.Errorf("clip short = %q", got)
	}
	// "é" is two bytes; cutting in its middle must drop it.
	if got := clip([]byte("aé"), 2); got != "a..." {
		t.Errorf("clip rune boundary = %q, want %q", got, "a...")
	}
}

func TestDoJSONRequest(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", req.Method)
		}
		if req.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", req.Header.Get("Content-Type"))
		}
		if req.Header.Get("X-Custom") != "yes" {
			t.Errorf("custom header missing")
		}
		return respond(200, `{"ok":true}`)(req)
	})}

	body, err := doJSONRequest(context.Background(), client, "http://llm.test/x", []byte(`{}`), map[string]string{"X-Custom": "yes"})
	if err != nil {
		t.Fatalf("doJSONRequest: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestDoJSONRequestTransportError(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})}

	_, err := doJSONRequest(context.Background(), client, "http://llm.test/x", []byte(`{}`), nil)
	if !errors.Is(err, domain.ErrProviderError) {
		t.Errorf("expected ErrProviderError, got %v", err)
	}
}

func TestDoJSONRequestStatusError(t *testing.T) {
	client := &http.Client{Transport: respond(http.StatusUnauthorized, `{"error":"bad key"}`)}

	_, err := doJSONRequest(context.Background(), client, "http://llm.test/x", []byte(`{}`), nil)
	if !errors.Is(err, domain.ErrAuthInvalid) {
		t.Errorf("expected ErrAuthInvalid, got %v", err)
	}
}
