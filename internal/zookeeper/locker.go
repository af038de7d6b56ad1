package zookeeper

import (
	"context"
	"strings"
	"time"

	"bistro/internal/pkg/logger"

	"github.com/pkg/errors"
)

// Locker 把 DistributedLock 适配为按 key 获取的锁
type Locker struct {
	conn *Conn
	wait time.Duration
}

func NewLocker(conn *Conn, wait time.Duration) *Locker {
	return &Locker{conn: conn, wait: wait}
}

func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := NewDistributedLock(l.conn, nodeName(key))
	if err != nil {
		return nil, err
	}

	lockCtx := ctx
	if _, ok := ctx.Deadline(); !ok && l.wait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}
	if err := lock.Lock(lockCtx); err != nil {
		return nil, errors.Wrapf(err, "acquire zookeeper lock %s", key)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("lock_key", key).Msg("failed to release zookeeper lock")
		}
	}, nil
}

// nodeName 将 key 转为合法的 znode 名称
func nodeName(key string) string {
	return strings.NewReplacer("/", "_", ":", "_").Replace(key)
}
