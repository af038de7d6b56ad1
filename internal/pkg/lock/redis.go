package lock

import (
	"context"
	"time"

	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/redis"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	scriptRelease = "lock_release"

	// 只有持有者才能删除锁，防止误删别人续上的锁
	releaseLua = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`
)

// RedisLocker 基于 SET NX PX 的分布式锁
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
	wait   time.Duration
}

type RedisLockerOptions struct {
	Prefix string
	TTL    time.Duration
	Retry  time.Duration
	Wait   time.Duration
}

func NewRedisLocker(client *redis.Client, opts RedisLockerOptions) *RedisLocker {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.Retry <= 0 {
		opts.Retry = 50 * time.Millisecond
	}
	client.LoadScriptFromContent(scriptRelease, releaseLua)
	return &RedisLocker{
		client: client,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		retry:  opts.Retry,
		wait:   opts.Wait,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	acquireCtx, cancel := waitCtx(ctx, l.wait)
	defer cancel()

	fullKey := l.prefix + key
	token := uuid.NewString()
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.GetClient().SetNX(acquireCtx, fullKey, token, l.ttl).Result()
		if err != nil && acquireCtx.Err() == nil {
			return nil, errors.Wrapf(err, "acquire redis lock %s", fullKey)
		}
		if ok {
			break
		}
		select {
		case <-acquireCtx.Done():
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}

	return func() {
		// 请求 ctx 可能已被取消，释放锁不应受其影响
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if _, err := l.client.RunScript(releaseCtx, scriptRelease, []string{fullKey}, token); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("lock_key", fullKey).Msg("failed to release redis lock")
		}
	}, nil
}
