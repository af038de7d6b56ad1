package zookeeper

import (
	"strings"
	"time"

	"bistro/internal/pkg/logger"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
)

// Conn 是对 zk.Conn 的简单包装
type Conn struct {
	*zk.Conn
}

// Connect 连接逗号分隔的 ZooKeeper 集群
func Connect(servers string, sessionTimeout time.Duration) (*Conn, error) {
	if sessionTimeout <= 0 {
		sessionTimeout = 10 * time.Second
	}
	c, events, err := zk.Connect(strings.Split(servers, ","), sessionTimeout, zk.WithLogInfo(false))
	if err != nil {
		return nil, errors.Wrapf(err, "connect zookeeper %s", servers)
	}
	go func() {
		for ev := range events {
			if ev.State == zk.StateExpired || ev.State == zk.StateDisconnected {
				logger.L().Warn().Str("state", ev.State.String()).Msg("zookeeper session state changed")
			}
		}
	}()
	return &Conn{Conn: c}, nil
}
