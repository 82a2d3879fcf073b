package drafter

import (
	"context"
	"errors"
	"log"
	"time"

	"fieldpilot/internal/port"
)

const maxBackoff = 10 * time.Second

// RetryDrafter retries transient failures of a single provider with exponential
// backoff. Each attempt runs under its own timeout.
type RetryDrafter struct {
	inner      port.Drafter
	name       string
	maxRetries int
	timeout    time.Duration
	backoff    time.Duration
}

// NewRetryDrafter wraps a provider. maxRetries is the number of extra attempts
// after the first one.
func NewRetryDrafter(inner port.Drafter, name string, maxRetries int, timeout, backoff time.Duration) *RetryDrafter {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryDrafter{
		inner:      inner,
		name:       name,
		maxRetries: maxRetries,
		timeout:    timeout,
		backoff:    backoff,
	}
}

func (r *RetryDrafter) Draft(ctx context.Context, req port.DraftRequest) (*port.DraftResult, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			wait := r.delay(attempt, lastErr)
			if wait < 0 {
				// Rate limit window exceeds what we are willing to wait here.
				return nil, lastErr
			}
			log.Printf("drafter.RetryDrafter: %s attempt %d failed, retrying in %s: %v", r.name, attempt, wait, lastErr)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		out, err := r.attempt(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !IsRetryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (r *RetryDrafter) attempt(ctx context.Context, req port.DraftRequest) (*port.DraftResult, error) {
	if r.timeout <= 0 {
		return r.inner.Draft(ctx, req)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.Draft(attemptCtx, req)
}

// delay returns the wait before the given attempt, or -1 when the previous
// error asks for a longer pause than maxBackoff.
func (r *RetryDrafter) delay(attempt int, lastErr error) time.Duration {
	var rl *RateLimitError
	if errors.As(lastErr, &rl) {
		if rl.RetryAfter > maxBackoff {
			return -1
		}
		return rl.RetryAfter
	}
	d := r.backoff << (attempt - 1)
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
