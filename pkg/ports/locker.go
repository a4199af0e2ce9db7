package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes access to a session across server replicas, so two
// requests pressing keys on the same calculator never interleave.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held, the context is canceled, or the
	// implementation gives up. The lock expires on its own after ttl.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
