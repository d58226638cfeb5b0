package llm

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// backoffSchedule is the reference exponential-backoff-with-jitter sequence
// from spec §4.12: 30s, 60s, 120s. Each step's jitter is +/-20% to avoid a
// thundering herd when several round steps hit a rate limit at once.
var backoffSchedule = []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second}

// RetryableProvider wraps a Provider with retry-with-backoff for transient
// failures. A *RetryAfterError (surfaced by RateLimitedProvider in
// subscription auth mode) is never retried here — it is the caller's signal
// to wait out a subscription-tier window, not a transport hiccup.
type RetryableProvider struct {
	provider Provider
	jitter   func(time.Duration) time.Duration
}

// NewRetryableProvider wraps provider with the spec's reference backoff
// schedule.
func NewRetryableProvider(provider Provider) *RetryableProvider {
	return &RetryableProvider{provider: provider, jitter: jitterDuration}
}

func (r *RetryableProvider) Name() string { return r.provider.Name() }

func (r *RetryableProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := r.provider.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryableTransportError(err) || attempt >= len(backoffSchedule) {
			return nil, lastErr
		}

		delay := r.jitter(backoffSchedule[attempt])
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// isRetryableTransportError classifies rate limits and transient network
// errors as retryable; authentication errors, schema violations, and a
// *RetryAfterError (subscription 429) are not.
func isRetryableTransportError(err error) bool {
	var retryAfter *RetryAfterError
	if errors.As(err, &retryAfter) {
		return false
	}
	var schemaErr *SchemaValidationError
	if errors.As(err, &schemaErr) {
		return false
	}
	return isRateLimited(err) || isTransientNetworkError(err)
}

func isTransientNetworkError(err error) bool {
	var netErr interface{ Temporary() bool }
	if errors.As(err, &netErr) {
		return netErr.Temporary()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// jitterDuration applies +/-20% jitter to d.
func jitterDuration(d time.Duration) time.Duration {
	spread := float64(d) * 0.2
	offset := (rand.Float64()*2 - 1) * spread
	return d + time.Duration(offset)
}
