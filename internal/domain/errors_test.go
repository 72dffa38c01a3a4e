package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorMessage(t *testing.T) {
	withDetail := NewDomainError("NewSearchTool", ErrNotConfigured, "'search.engine_id' is required")
	assert.Equal(t, "NewSearchTool: 'search.engine_id' is required: required configuration missing", withDetail.Error())

	bare := NewDomainError("GoogleSearchBackend.Search", ErrSearchResponse, "")
	assert.Equal(t, "GoogleSearchBackend.Search: search response malformed", bare.Error())
}

func TestDomainErrorSurvivesWrapping(t *testing.T) {
	base := NewDomainError("summarize", ErrSummarize, "model returned an empty summary")
	err := fmt.Errorf("summarize results: %w", base)

	assert.ErrorIs(t, err, ErrSummarize)
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "summarize", de.Op)
	assert.Equal(t, CodeSummarize, de.Code())
}

func TestErrorCodeOfSearchPaths(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, CodeUnknown},
		{"untyped", errors.New("unexpected"), CodeUnknown},
		{"bare sentinel", ErrSearchRequest, CodeSearchRequest},
		{"missing credentials", NewDomainError("NewSearchTool", ErrNotConfigured, "'search.api_key' is required"), CodeNotConfigured},
		{"transport", fmt.Errorf("search google: %w: dial tcp", ErrSearchRequest), CodeSearchRequest},
		{"malformed body", fmt.Errorf("search google: %w: invalid character", ErrSearchResponse), CodeSearchResponse},
		{"paced out", fmt.Errorf("%w: google search: %w", ErrRateLimit, ErrSearchRequest), CodeRateLimit},
		{"summary rate limited", fmt.Errorf("%w: %w", ErrSummarize, fmt.Errorf("openai: %w", ErrRateLimit)), CodeRateLimit},
		{"summary auth", fmt.Errorf("%w: %w", ErrSummarize, ErrAuthInvalid), CodeAuthInvalid},
		{"summary provider down", fmt.Errorf("%w: %w", ErrSummarize, ErrProviderError), CodeSummarize},
		{"unknown provider", fmt.Errorf("%w: %w", ErrSummarize, NewDomainError("Registry.Get", ErrProviderNotFound, "groq")), CodeProviderNotFound},
		{"unclassified domain error", NewDomainError("Op", errors.New("custom"), "detail"), CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeOf(tt.err))
		})
	}
}

func TestEverySentinelHasCodeAndPriority(t *testing.T) {
	require.NotEmpty(t, errorCodeMap)
	for sentinel, code := range errorCodeMap {
		assert.NotEqual(t, CodeUnknown, code, "sentinel %v maps to UNKNOWN", sentinel)
		assert.Contains(t, codePriority, sentinel, "sentinel %v has no priority", sentinel)
	}
	assert.Len(t, codePriority, len(errorCodeMap))
}

func TestWrapOp(t *testing.T) {
	assert.Nil(t, WrapOp("Registry.Resolve", nil))

	err := WrapOp("LLMSummarizer.Summarize", WrapOp("Registry.Resolve", ErrProviderNotFound))
	assert.Equal(t, "LLMSummarizer.Summarize: Registry.Resolve: llm provider not found", err.Error())
	assert.ErrorIs(t, err, ErrProviderNotFound)
	assert.Equal(t, CodeProviderNotFound, ErrorCodeOf(err))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"provider rate limit", fmt.Errorf("%w: %w", ErrSummarize, ErrRateLimit), true},
		{"prompt too large", fmt.Errorf("%w: API error 413", ErrContextOverflow), true},
		{"timeout", NewDomainError("LLM.Chat", ErrTimeout, "openai"), true},
		{"bad key", ErrAuthInvalid, false},
		{"missing credentials", ErrNotConfigured, false},
		{"malformed body", ErrSearchResponse, false},
		{"untyped", errors.New("random"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err))
		})
	}
}
