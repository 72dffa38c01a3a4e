package tool

import (
	"errors"
	"strings"

	"searchagent/internal/domain"
)

// retryableSentinels lists domain errors that indicate transient failures.
// A malformed search response or a missing credential is never listed.
var retryableSentinels = []error{
	domain.ErrSearchRequest,
	domain.ErrTimeout,
	domain.ErrProviderError,
	domain.ErrRateLimit,
	domain.ErrContextOverflow,
}

// retryablePatterns are substrings in error messages that indicate transient failures.
// Checked case-insensitively.
var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"timeout",
	"deadline exceeded",
	"temporarily unavailable",
	"service unavailable",
	"try again",
	"circuit breaker is open",
}

// classifyToolError returns true if the error is transient and the tool call
// may succeed if the agent asks again. Returns false for nil, permanent, or unknown errors.
func classifyToolError(err error) bool {
	if err == nil {
		return false
	}

	for _, sentinel := range retryableSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	lower := strings.ToLower(err.Error())
	for _, p := range retryablePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}

	return false
}
