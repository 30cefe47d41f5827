package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	orderIDPrefix     = "ORD"
	orderIDTimeLayout = "20060102-150405"
	orderIDSuffixLen  = 4
	base36Alphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Currency - все цены каталога в евро.
const Currency = "EUR"

// OrderLine - зафиксированная позиция заказа.
type OrderLine struct {
	ArticleNumber string
	Name          string
	Unit          string
	Price         decimal.Decimal
	Quantity      int
	Total         decimal.Decimal
}

// Order - снимок клиента и корзины на момент оформления.
// Существует только для подтверждения и передачи во внешний контур.
type Order struct {
	ID            string
	CreatedAt     time.Time
	CustomerIndex int
	Customer      Customer
	Lines         []OrderLine
	Totals        Totals
}

// NewOrder замораживает клиента и позиции корзины.
func NewOrder(id string, createdAt time.Time, customerIndex int, customer Customer, lines []CartLine) Order {
	frozen := make([]OrderLine, 0, len(lines))
	for _, line := range lines {
		frozen = append(frozen, OrderLine{
			ArticleNumber: line.ArticleNumber,
			Name:          line.Name,
			Unit:          line.Unit,
			Price:         line.Price,
			Quantity:      line.Quantity,
			Total:         line.Total(),
		})
	}

	return Order{
		ID:            id,
		CreatedAt:     createdAt,
		CustomerIndex: customerIndex,
		Customer:      customer,
		Lines:         frozen,
		Totals:        ComputeTotals(lines),
	}
}

// NewOrderID формирует идентификатор ORD-<YYYYMMDD>-<HHMMSS>-<XXXX>,
// где XXXX - четыре случайных символа base36 в верхнем регистре.
// intn должна возвращать число из [0, n).
func NewOrderID(at time.Time, intn func(n int) int) string {
	var suffix strings.Builder
	suffix.Grow(orderIDSuffixLen)
	for i := 0; i < orderIDSuffixLen; i++ {
		suffix.WriteByte(base36Alphabet[intn(len(base36Alphabet))])
	}
	return orderIDPrefix + "-" + at.Format(orderIDTimeLayout) + "-" + suffix.String()
}

// SameContent сообщает, что other - тот же заказ: совпадают клиент, позиции и итоги.
// Время и идентификатор не сравниваются.
func (o Order) SameContent(other Order) bool {
	if o.CustomerIndex != other.CustomerIndex || o.Customer != other.Customer {
		return false
	}
	if o.Totals.Lines != other.Totals.Lines || o.Totals.Items != other.Totals.Items ||
		!o.Totals.Amount.Equal(other.Totals.Amount) || len(o.Lines) != len(other.Lines) {
		return false
	}
	for i, line := range o.Lines {
		theirs := other.Lines[i]
		if line.ArticleNumber != theirs.ArticleNumber || line.Name != theirs.Name || line.Unit != theirs.Unit ||
			line.Quantity != theirs.Quantity || !line.Price.Equal(theirs.Price) || !line.Total.Equal(theirs.Total) {
			return false
		}
	}
	return true
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error
	if o.CustomerIndex < 0 {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrItemsRequired)
	}

	// Сверяем итог с позициями: qty * price.
	calc := decimal.Zero
	items := 0
	for _, line := range o.Lines {
		if err := checkQuantity(line.Quantity); err != nil {
			errs = append(errs, err)
		}
		if line.Price.IsNegative() {
			errs = append(errs, ErrArticlePriceInvalid)
		}
		calc = calc.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items += line.Quantity
	}
	if !calc.Equal(o.Totals.Amount) || items != o.Totals.Items || len(o.Lines) != o.Totals.Lines {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
