package cache

import (
	"context"
	"time"
)

// Noop is a cache that never stores anything. Used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) {
	return false, nil
}

func (Noop) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
