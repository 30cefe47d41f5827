package submission

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

// Тип события и агрегата в outbox.
const (
	EventOrderCompleted = "OrderCompleted"
	AggregateOrder      = "order"
)

// OrderCompletedEvent - полезная нагрузка события о переданном заказе.
type OrderCompletedEvent struct {
	OrderID   string          `json:"order_id"`
	CreatedAt time.Time       `json:"created_at"`
	Customer  CustomerPayload `json:"customer"`
	Lines     []LinePayload   `json:"lines"`
	LineCount int             `json:"line_count"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
}

// CustomerPayload - снимок клиента.
type CustomerPayload struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	City       string `json:"city,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// LinePayload - позиция заказа.
type LinePayload struct {
	ArticleNumber string          `json:"article_number"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Total         decimal.Decimal `json:"total"`
}

// NewOrderCompletedEvent строит событие из замороженного заказа.
func NewOrderCompletedEvent(order domain.Order) OrderCompletedEvent {
	c := order.Customer
	lines := make([]LinePayload, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, LinePayload{
			ArticleNumber: line.ArticleNumber,
			Name:          line.Name,
			Unit:          line.Unit,
			Price:         line.Price,
			Quantity:      line.Quantity,
			Total:         line.Total,
		})
	}

	return OrderCompletedEvent{
		OrderID:   order.ID,
		CreatedAt: order.CreatedAt.UTC(),
		Customer: CustomerPayload{
			Index:      order.CustomerIndex,
			Name:       c.Name,
			Street:     c.Street,
			PostalCode: c.PostalCode,
			City:       c.City,
			Email:      c.Email,
			Phone:      c.Phone,
		},
		Lines:     lines,
		LineCount: order.Totals.Lines,
		ItemCount: order.Totals.Items,
		Total:     order.Totals.Amount,
		Currency:  domain.Currency,
	}
}
