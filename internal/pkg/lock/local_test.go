package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerSerializesSameKey(t *testing.T) {
	locker := NewLocalLocker(time.Second)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
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
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, locker.slots)
}

func TestLocalLockerDifferentKeysDoNotBlock(t *testing.T) {
	locker := NewLocalLocker(time.Second)

	releaseA, err := locker.Acquire(context.Background(), "calendar:2025-07")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := locker.Acquire(context.Background(), "calendar:2025-08")
	require.NoError(t, err)
	releaseB()
}

func TestLocalLockerTimesOut(t *testing.T) {
	locker := NewLocalLocker(20 * time.Millisecond)

	release, err := locker.Acquire(context.Background(), "coupon:SUMMER")
	require.NoError(t, err)

	_, err = locker.Acquire(context.Background(), "coupon:SUMMER")
	assert.ErrorIs(t, err, ErrLockTimeout)

	release()
	release() // 重复释放无副作用

	again, err := locker.Acquire(context.Background(), "coupon:SUMMER")
	require.NoError(t, err)
	again()
}
