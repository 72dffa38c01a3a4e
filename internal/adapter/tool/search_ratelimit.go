package tool

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"searchagent/internal/domain"
)

// RateLimitedBackend paces calls to another SearchBackend with a token
// bucket, keeping a shared API key under its per-minute quota.
type RateLimitedBackend struct {
	inner   SearchBackend
	limiter *rate.Limiter
}

// NewRateLimitedBackend wraps inner so that it is called at most
// requestsPerMin times per minute with bursts of up to burst calls.
// A non-positive requestsPerMin returns inner unchanged.
func NewRateLimitedBackend(inner SearchBackend, requestsPerMin, burst int) SearchBackend {
	if requestsPerMin <= 0 {
		return inner
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedBackend{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerMin)/60.0, burst),
	}
}

// Search waits for a token, then delegates. It fails with ErrRateLimit when
// ctx ends before a token becomes available.
func (b *RateLimitedBackend) Search(ctx context.Context, query string) (*SearchResponse, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s search: %w", domain.ErrRateLimit, b.inner.Name(), err)
	}
	return b.inner.Search(ctx, query)
}

// Name returns the wrapped backend's name.
func (b *RateLimitedBackend) Name() string { return b.inner.Name() }
