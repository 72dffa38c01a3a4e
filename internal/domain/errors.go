package domain

import (
	"errors"
	"fmt"
)

// Category sentinels. Wrap them with NewDomainError or fmt.Errorf("%w") so that
// callers can classify failures with errors.Is.
var (
	ErrNotFound         = fmt.Errorf("not found")
	ErrTimeout          = fmt.Errorf("operation timed out")
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrProviderError    = fmt.Errorf("provider error")
	ErrNotConfigured    = fmt.Errorf("required configuration missing")
	ErrPermissionDenied = fmt.Errorf("permission denied")
)

// Sentinel errors for the domain layer.
var (
	ErrProviderNotFound = fmt.Errorf("llm provider not found")
	ErrToolNotFound     = fmt.Errorf("tool not found")
	ErrConfigLoad       = fmt.Errorf("failed to load configuration")
	ErrDecryption       = fmt.Errorf("decryption failed")

	// Search / summarization errors.
	ErrSearchRequest  = fmt.Errorf("search request failed")
	ErrSearchResponse = fmt.Errorf("search response malformed")
	ErrSummarize      = fmt.Errorf("summarization failed")

	// Resilience errors.
	ErrContextOverflow = fmt.Errorf("context window exceeded")
	ErrRateLimit       = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid     = fmt.Errorf("authentication failed")
	ErrToolFailure     = fmt.Errorf("tool execution failed")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "SearchTool.Run")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsRetryableError reports whether err is a transient error that may succeed on retry.
// Nothing in this module retries; the flag is surfaced to the calling agent runtime.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrContextOverflow) ||
		errors.Is(err, ErrTimeout)
}

// ErrorCode is a machine-parseable error category for logs and tool results.
type ErrorCode string

const (
	CodeUnknown          ErrorCode = "UNKNOWN"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeTimeout          ErrorCode = "TIMEOUT"
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeProviderError    ErrorCode = "PROVIDER_ERROR"
	CodeNotConfigured    ErrorCode = "NOT_CONFIGURED"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	CodeToolNotFound     ErrorCode = "TOOL_NOT_FOUND"
	CodeConfigLoad       ErrorCode = "CONFIG_LOAD"
	CodeDecryption       ErrorCode = "DECRYPTION"
	CodeSearchRequest    ErrorCode = "SEARCH_REQUEST"
	CodeSearchResponse   ErrorCode = "SEARCH_RESPONSE"
	CodeSummarize        ErrorCode = "SUMMARIZE"
	CodeContextOverflow  ErrorCode = "CONTEXT_OVERFLOW"
	CodeRateLimit        ErrorCode = "RATE_LIMIT"
	CodeAuthInvalid      ErrorCode = "AUTH_INVALID"
	CodeToolFailure      ErrorCode = "TOOL_FAILURE"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrNotFound:         CodeNotFound,
	ErrTimeout:          CodeTimeout,
	ErrInvalidInput:     CodeInvalidInput,
	ErrProviderError:    CodeProviderError,
	ErrNotConfigured:    CodeNotConfigured,
	ErrPermissionDenied: CodePermissionDenied,

	ErrProviderNotFound: CodeProviderNotFound,
	ErrToolNotFound:     CodeToolNotFound,
	ErrConfigLoad:       CodeConfigLoad,
	ErrDecryption:       CodeDecryption,
	ErrSearchRequest:    CodeSearchRequest,
	ErrSearchResponse:   CodeSearchResponse,
	ErrSummarize:        CodeSummarize,
	ErrContextOverflow:  CodeContextOverflow,
	ErrRateLimit:        CodeRateLimit,
	ErrAuthInvalid:      CodeAuthInvalid,
	ErrToolFailure:      CodeToolFailure,
}

// codePriority lists sentinels from most to least specific. A summarization
// failure caused by a rate limit reports RATE_LIMIT, not SUMMARIZE.
var codePriority = []error{
	ErrRateLimit,
	ErrAuthInvalid,
	ErrContextOverflow,
	ErrTimeout,
	ErrNotConfigured,
	ErrProviderNotFound,
	ErrToolNotFound,
	ErrDecryption,
	ErrConfigLoad,
	ErrSearchResponse,
	ErrSearchRequest,
	ErrSummarize,
	ErrToolFailure,
	ErrProviderError,
	ErrInvalidInput,
	ErrPermissionDenied,
	ErrNotFound,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	// Fast path: direct sentinel lookup.
	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	for _, sentinel := range codePriority {
		if errors.Is(err, sentinel) {
			return errorCodeMap[sentinel]
		}
	}

	return CodeUnknown
}

// Code returns the ErrorCode for this DomainError's underlying sentinel.
func (e *DomainError) Code() ErrorCode {
	return ErrorCodeOf(e.Err)
}
