package port

import (
	"context"
	"time"
)

// Cache is a best-effort key/value cache for derived read models.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// SessionStore tracks issued refresh tokens so they can be revoked on sign-out.
type SessionStore interface {
	Save(ctx context.Context, tokenID, userID string, expiresAt time.Time) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
}
