// Package submission передаёт завершённые заказы в архив вместе с событием для outbox.
package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

// Service реализует domain.OrderSubmitter поверх архива заказов.
type Service struct {
	archive domain.OrderArchive
	logger  *log.Entry
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService создаёт сервис передачи заказов.
func NewService(archive domain.OrderArchive, opts ...Option) *Service {
	s := &Service{
		archive: archive,
		logger:  log.WithField("component", "order-submission"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit проверяет инварианты заказа и атомарно сохраняет его с событием OrderCompleted.
// Повторная передача того же заказа считается успешной; если идентификатор
// занят другим заказом, возвращается domain.ErrOrderIDConflict.
func (s *Service) Submit(ctx context.Context, order domain.Order) error {
	if s.archive == nil {
		return errors.New("order archive is not configured")
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return fmt.Errorf("order %s rejected: %w", order.ID, errors.Join(errs...))
	}

	payload, err := json.Marshal(NewOrderCompletedEvent(order))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	entry := s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"amount":   order.Totals.Amount.StringFixed(2),
		"lines":    order.Totals.Lines,
	})

	event, err := s.archive.Archive(ctx, order, domain.OutboxMessage{
		AggregateType: AggregateOrder,
		AggregateID:   order.ID,
		EventType:     EventOrderCompleted,
		Payload:       payload,
	})
	switch {
	case errors.Is(err, domain.ErrOrderAlreadyArchived):
		stored, getErr := s.archive.Get(ctx, order.ID)
		if getErr != nil {
			entry.WithError(getErr).Error("failed to load archived order with the same id")
			return fmt.Errorf("load archived order %s: %w", order.ID, getErr)
		}
		if !order.SameContent(stored) {
			entry.Warn("order id is already taken by a different order")
			return fmt.Errorf("archive order %s: %w", order.ID, domain.ErrOrderIDConflict)
		}
		entry.Info("order already archived, submission treated as done")
		return nil
	case err != nil:
		entry.WithError(err).Error("failed to archive order")
		return fmt.Errorf("archive order %s: %w", order.ID, err)
	}

	entry.WithField("outbox_id", event.ID).Info("order archived and queued for delivery")
	return nil
}

var _ domain.OrderSubmitter = (*Service)(nil)
