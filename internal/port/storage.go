package port

import (
	"context"
	"io"
	"time"
)

// PutObjectInput describes one media object to store.
type PutObjectInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// MediaStorage abstracts the bucket that holds job media (session photos,
// incident photos, proposal images).
type MediaStorage interface {
	Put(ctx context.Context, input PutObjectInput) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
