// Package memory - in-memory архив заказов и outbox для локального запуска и тестов.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
	outboxStatusFailed  = "failed"
)

// outboxRecord хранит сообщение и служебные поля.
type outboxRecord struct {
	msg        domain.OutboxMessage
	seq        int
	status     string
	attemptCnt int
	createdAt  time.Time
	updatedAt  time.Time
}

// Archive хранит заказы и outbox под одним мьютексом, поэтому
// запись заказа и события атомарна.
type Archive struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
	outbox map[string]*outboxRecord
	seq    int
	now    func() time.Time
}

// NewArchive создаёт пустой архив.
func NewArchive() *Archive {
	return &Archive{
		orders: make(map[string]domain.Order),
		outbox: make(map[string]*outboxRecord),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Archive сохраняет заказ и событие. Повторный ID заказа отклоняется.
func (a *Archive) Archive(ctx context.Context, order domain.Order, event domain.OutboxMessage) (domain.OutboxMessage, error) {
	if err := ctx.Err(); err != nil {
		return domain.OutboxMessage{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.orders[order.ID]; exists {
		return domain.OutboxMessage{}, domain.ErrOrderAlreadyArchived
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	order.Lines = append([]domain.OrderLine(nil), order.Lines...)
	a.orders[order.ID] = order

	now := a.now()
	a.seq++
	a.outbox[event.ID] = &outboxRecord{
		msg:       event,
		seq:       a.seq,
		status:    outboxStatusPending,
		createdAt: now,
		updatedAt: now,
	}
	return event, nil
}

// Get возвращает заказ или ErrOrderNotFound.
func (a *Archive) Get(_ context.Context, id string) (domain.Order, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	order, ok := a.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// List возвращает заказы, новые первыми.
func (a *Archive) List(_ context.Context, limit int) ([]domain.Order, error) {
	a.mu.RLock()
	result := make([]domain.Order, 0, len(a.orders))
	for _, order := range a.orders {
		result = append(result, order)
	}
	a.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Ping всегда успешен: архив в памяти процесса.
func (a *Archive) Ping(context.Context) error {
	return nil
}

var _ domain.OrderArchive = (*Archive)(nil)
