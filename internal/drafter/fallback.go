package drafter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"fieldpilot/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackDrafter tries providers in order, skipping those with open circuits.
// It implements port.Drafter.
type FallbackDrafter struct {
	drafters []port.Drafter
	circuits []*circuitState
	names    []string
	now      func() time.Time
}

// NewFallbackDrafter creates a FallbackDrafter from an ordered list of drafters and their names.
func NewFallbackDrafter(drafters []port.Drafter, names []string) *FallbackDrafter {
	circuits := make([]*circuitState, len(drafters))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackDrafter{
		drafters: drafters,
		circuits: circuits,
		names:    names,
		now:      time.Now,
	}
}

func (f *FallbackDrafter) Draft(ctx context.Context, req port.DraftRequest) (*port.DraftResult, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, d := range f.drafters {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("drafter.FallbackDrafter: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := d.Draft(ctx, req)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		log.Printf("drafter.FallbackDrafter: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all drafters rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all drafters failed: %w", lastErr)
}
