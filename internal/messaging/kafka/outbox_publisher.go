package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

// OutboxTopicPublisher публикует события outbox в один топик.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт паблишер; пустой topic означает TopicOrders.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxTopicPublisher {
	if topic == "" {
		topic = TopicOrders
	}
	return &OutboxTopicPublisher{producer: producer, topic: topic}
}

// Topic возвращает целевой топик.
func (p *OutboxTopicPublisher) Topic() string {
	return p.topic
}

// Publish отправляет событие; ключ - номер заказа, чтобы события одного заказа шли в одну партицию.
func (p *OutboxTopicPublisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	payload := json.RawMessage(event.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	envelope := Envelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       payload,
		PublishedAt:   p.producer.now().UTC(),
	}

	return p.producer.Publish(ctx, p.topic, key, envelope,
		Header{Key: HeaderEventType, Value: event.EventType},
		Header{Key: HeaderOutboxID, Value: event.ID},
		Header{Key: HeaderAggregateType, Value: event.AggregateType},
	)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
