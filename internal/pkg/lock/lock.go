// Package lock 提供按 key 互斥的锁，用于把"检查后写入"串行化。
package lock

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrLockTimeout 在等待锁超时时返回
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Locker 按 key 获取互斥锁，release 必须且只能调用一次
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// waitCtx 给没有截止时间的 ctx 加上默认等待上限
func waitCtx(ctx context.Context, wait time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || wait <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, wait)
}
