package storage

import (
	"context"
	"time"
)

// ImageResolver turns an object key from the prize catalog into a URL a
// browser can fetch. The bucket is private, so implementations hand out
// time-limited presigned links.
type ImageResolver interface {
	ResolveURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
