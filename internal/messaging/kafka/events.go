package kafka

import (
	"encoding/json"
	"time"
)

// Topics для Kafka
const (
	TopicOrders          = "messeorder.orders"
	TopicDeadLetterQueue = "messeorder.dlq"
)

// Kafka headers сообщений с заказами
const (
	HeaderEventType     = "x-event-type"
	HeaderOutboxID      = "x-outbox-id"
	HeaderAggregateType = "x-aggregate-type"
)

// Envelope - конверт, в котором событие outbox уходит в топик.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}
