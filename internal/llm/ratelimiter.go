package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ziadkadry99/handoverdoc/internal/config"
)

// RetryAfterError is returned when the provider reports a 429 and the
// caller's auth method forbids the facade from retrying on its own —
// subscription-tier rate limits reset on a schedule the caller, not the
// facade, must wait out.
type RetryAfterError struct {
	Provider string
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded (subscription auth does not auto-retry)", e.Provider)
}

// isRateLimited inspects an error message for a 429 without requiring a
// formal error type from every bundled provider.
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, http.StatusText(http.StatusTooManyRequests))
}

// RateLimitedProvider wraps a Provider with a token bucket rate limiter.
// Its behavior on a 429 response depends on the configured AuthMethod:
// api-key mode returns the provider's error unchanged, leaving any retry to
// RetryableProvider; subscription mode joins a *RetryAfterError onto it,
// which RetryableProvider never retries, since a subscription's rate window
// resets independent of local backoff.
type RateLimitedProvider struct {
	provider   Provider
	rpm        int
	authMethod config.AuthMethod
	mu         sync.Mutex
	tokens     int
	lastFill   time.Time
}

// NewRateLimitedProvider wraps the given provider with a rate limiter
// that allows at most rpm requests per minute.
func NewRateLimitedProvider(provider Provider, rpm int, authMethod config.AuthMethod) Provider {
	return &RateLimitedProvider{
		provider:   provider,
		rpm:        rpm,
		authMethod: authMethod,
		tokens:     rpm,
		lastFill:   time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := r.provider.Complete(ctx, req)
	if err != nil && isRateLimited(err) && r.authMethod == config.AuthSubscription {
		return nil, errors.Join(err, &RetryAfterError{Provider: r.provider.Name()})
	}
	return resp, err
}

func (r *RateLimitedProvider) wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(r.lastFill)

		// Refill tokens based on elapsed time.
		refill := int(elapsed.Seconds() * float64(r.rpm) / 60.0)
		if refill > 0 {
			r.tokens += refill
			if r.tokens > r.rpm {
				r.tokens = r.rpm
			}
			r.lastFill = now
		}

		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
