// Package storage issues short-lived signed URLs for uploaded artifacts and
// downloads them with the size and type limits the pipeline relies on.
package storage

import (
	"context"
	"time"
)

// SignedURLTTL is the lifetime of every retrieval URL issued by a Signer.
const SignedURLTTL = 300 * time.Second

// Signer turns an object path into a time-boxed GET URL.
type Signer interface {
	SignGet(ctx context.Context, path string, ttl time.Duration) (string, error)
}
