package domain

import (
	"context"
	"time"
)

// OrderSubmitter - внешний получатель завершённого заказа.
// Заказ передаётся целиком одним вызовом.
type OrderSubmitter interface {
	Submit(ctx context.Context, order Order) error
}

// OrderArchive хранит переданные заказы.
type OrderArchive interface {
	// Archive сохраняет заказ и событие outbox в одной транзакции.
	// Повторный ID заказа возвращает ErrOrderAlreadyArchived.
	Archive(ctx context.Context, order Order, event OutboxMessage) (OutboxMessage, error)
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// List возвращает последние заказы, новые первыми. limit <= 0 - без ограничения.
	List(ctx context.Context, limit int) ([]Order, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository отдаёт события outbox на публикацию.
type OutboxRepository interface {
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
