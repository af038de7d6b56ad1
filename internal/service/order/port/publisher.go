package port

import "context"

// EventPublisher 发布订单领域事件，key 用作分区键
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}
