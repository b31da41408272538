package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker keeps several daemons from driving the same hardware at once.
type DistributedLocker interface {
	// Lock attempts to acquire a lock for the given key (e.g., a host name).
	// It blocks until the lock is acquired or the context is canceled.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)

	// Extend pushes back the expiry of a lock held by this locker.
	Extend(ctx context.Context, key string, ttl time.Duration) error
}
