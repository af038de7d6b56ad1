package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bistro/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

const headerEventType = "event-type"

// Envelope 是写入 Kafka 的统一事件格式
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type namedEvent interface {
	EventName() string
}

// NewEnvelope 包装一个领域事件，事件类型取自 EventName()，否则取 Go 类型名
func NewEnvelope(event any, now time.Time) (*Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, "marshal event payload")
	}
	eventType := fmt.Sprintf("%T", event)
	if named, ok := event.(namedEvent); ok {
		eventType = named.EventName()
	}
	return &Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: now.UTC(),
		Payload:    payload,
	}, nil
}

// KafkaPublisher 把领域事件发布到一个 topic
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish 以 key 作为分区键发布事件
func (p *KafkaPublisher) Publish(ctx context.Context, key string, event any) error {
	envelope, err := NewEnvelope(event, time.Now())
	if err != nil {
		return err
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, "marshal event envelope")
	}

	if err := ProduceMessage(ctx, p.writer, []byte(key), body,
		kafka.Header{Key: headerEventType, Value: []byte(envelope.Type)}); err != nil {
		return errors.Wrapf(err, "publish %s to %s", envelope.Type, p.writer.Topic)
	}

	logger.Ctx(ctx).Debug().
		Str("topic", p.writer.Topic).
		Str("event_id", envelope.ID).
		Str("event_type", envelope.Type).
		Msg("event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
