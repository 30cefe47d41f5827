package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

// PullPending возвращает до limit pending-сообщений в порядке записи.
func (a *Archive) PullPending(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	a.mu.RLock()
	records := make([]*outboxRecord, 0, len(a.outbox))
	for _, rec := range a.outbox {
		if rec.status == outboxStatusPending {
			records = append(records, rec)
		}
	}
	a.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return records[i].seq < records[j].seq })
	if len(records) > limit {
		records = records[:limit]
	}

	result := make([]domain.OutboxMessage, 0, len(records))
	for _, rec := range records {
		result = append(result, rec.msg)
	}
	return result, nil
}

// Stats возвращает размер backlog и возраст самого старого сообщения.
func (a *Archive) Stats(context.Context) (domain.OutboxStats, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var stats domain.OutboxStats
	for _, rec := range a.outbox {
		if rec.status != outboxStatusPending {
			continue
		}
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() || rec.createdAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = rec.createdAt
		}
	}
	return stats, nil
}

// MarkSent отмечает успешную публикацию.
func (a *Archive) MarkSent(_ context.Context, id string) error {
	return a.mark(id, outboxStatusSent)
}

// MarkFailed отмечает исчерпание попыток.
func (a *Archive) MarkFailed(_ context.Context, id string) error {
	return a.mark(id, outboxStatusFailed)
}

func (a *Archive) mark(id, status string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	record, ok := a.outbox[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	record.status = status
	record.attemptCnt++
	record.updatedAt = a.now()
	return nil
}

var _ domain.OutboxRepository = (*Archive)(nil)
