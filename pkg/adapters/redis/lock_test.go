package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/fangraph/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "host1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:host1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:host1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := newClient(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "host1", 5*time.Second)
	require.NoError(t, err)

	// A second daemon gives up when its context expires
	timeoutCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker2.Lock(timeoutCtx, "host1", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, "host1", 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock2(ctx))
}

func TestRedisLocker_Extend(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	other := redis.NewLocker(client, "test:")
	ctx := context.Background()

	assert.ErrorIs(t, locker.Extend(ctx, "host1", time.Second), redis.ErrLockNotHeld)

	unlock, err := locker.Lock(ctx, "host1", 2*time.Second)
	require.NoError(t, err)

	mr.FastForward(1500 * time.Millisecond)
	require.NoError(t, locker.Extend(ctx, "host1", 2*time.Second))
	mr.FastForward(1500 * time.Millisecond)
	assert.True(t, mr.Exists("test:lock:host1"), "extended lock outlives its first ttl")

	assert.ErrorIs(t, other.Extend(ctx, "host1", time.Second), redis.ErrLockNotHeld)

	// An expired lock cannot be extended
	mr.FastForward(3 * time.Second)
	assert.ErrorIs(t, locker.Extend(ctx, "host1", time.Second), redis.ErrLockNotHeld)
	assert.NoError(t, unlock(ctx))
}
