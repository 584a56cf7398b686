package analyzer

import (
	"context"
	"time"
)

// Store caches finished analysis responses. Implementations must treat a miss
// as (Response{}, false, nil); errors are reserved for backend failures.
type Store interface {
	Get(ctx context.Context, key string) (Response, bool, error)
	Set(ctx context.Context, key string, resp Response, ttl time.Duration) error
}
