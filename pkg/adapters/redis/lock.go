package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/fangraph/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")

	// ErrLockNotHeld is returned when extending a lock this locker does not own.
	ErrLockNotHeld = errors.New("lock not held")
)

// Release and extend only when the stored token is ours.
var (
	unlockScript = backend.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
	extendScript = backend.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)
)

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client *backend.Client
	prefix string

	mu     sync.Mutex
	tokens map[string]string
}

var _ ports.DistributedLocker = (*Locker)(nil)

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		tokens: make(map[string]string),
	}
}

func (l *Locker) lockKey(key string) string {
	return l.prefix + "lock:" + key
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
// It polls until the lock is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.lockKey(key)
	val := uuid.NewString()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		success, err := l.client.SetNX(ctx, lockKey, val, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLockAcquire, err)
		}
		if success {
			l.mu.Lock()
			l.tokens[key] = val
			l.mu.Unlock()

			return func(ctx context.Context) error {
				l.mu.Lock()
				delete(l.tokens, key)
				l.mu.Unlock()
				return unlockScript.Run(ctx, l.client, []string{lockKey}, val).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockAcquire, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Extend resets the expiry of a lock held by this locker.
func (l *Locker) Extend(ctx context.Context, key string, ttl time.Duration) error {
	l.mu.Lock()
	val, ok := l.tokens[key]
	l.mu.Unlock()
	if !ok {
		return ErrLockNotHeld
	}

	n, err := extendScript.Run(ctx, l.client, []string{l.lockKey(key)}, val, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis error extending lock: %w", err)
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}
