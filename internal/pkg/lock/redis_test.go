package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bistro/internal/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { _ = rdb.Close() })

	locker := NewRedisLocker(redis.Wrap(rdb), RedisLockerOptions{
		Prefix: "test:lock:",
		TTL:    time.Second,
		Retry:  5 * time.Millisecond,
		Wait:   2 * time.Second,
	})
	return locker, mr
}

func TestRedisLockerSerializesSameKey(t *testing.T) {
	locker, mr := newRedisLocker(t)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "calendar:2025-07")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.False(t, mr.Exists("test:lock:calendar:2025-07"))
}

func TestRedisLockerTimesOutWhileHeld(t *testing.T) {
	locker, _ := newRedisLocker(t)

	release, err := locker.Acquire(context.Background(), "calendar:2025-08")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "calendar:2025-08")
	assert.ErrorIs(t, err, ErrLockTimeout)

	release()
	again, err := locker.Acquire(context.Background(), "calendar:2025-08")
	require.NoError(t, err)
	again()
}

func TestRedisLockerReleaseOnlyDeletesOwnToken(t *testing.T) {
	locker, mr := newRedisLocker(t)
	key := "test:lock:calendar:2025-09"

	releaseFirst, err := locker.Acquire(context.Background(), "calendar:2025-09")
	require.NoError(t, err)

	// 第一个持有者的锁过期后被别人拿走
	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists(key))
	releaseSecond, err := locker.Acquire(context.Background(), "calendar:2025-09")
	require.NoError(t, err)
	secondToken, err := mr.Get(key)
	require.NoError(t, err)

	releaseFirst()
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, secondToken, got)

	releaseSecond()
	assert.False(t, mr.Exists(key))
}
