package domain

import "github.com/shopspring/decimal"

// MaxLineQuantity - верхняя граница количества одной позиции. Вместе с тем, что
// на номер артикула приходится одна позиция, она же ограничивает Totals.Items.
const MaxLineQuantity = 1_000_000

// CartLine - позиция корзины: снимок артикула на момент добавления и изменяемое количество.
type CartLine struct {
	// ID назначается при создании позиции и не меняется при перестановках.
	ID            string
	ArticleNumber string
	Name          string
	Unit          string
	Price         decimal.Decimal
	Quantity      int
}

// Total возвращает price × quantity без округления.
func (l CartLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals агрегирует корзину.
type Totals struct {
	// Lines - число позиций.
	Lines int
	// Items - сумма количеств по всем позициям.
	Items int
	// Amount - точная сумма price × quantity.
	Amount decimal.Decimal
}

// Cart хранит позиции в порядке добавления. На один номер артикула приходится
// не больше одной позиции.
type Cart struct {
	lines []CartLine
}

// Lines возвращает копию позиций.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len возвращает число позиций.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty сообщает, пуста ли корзина.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Line возвращает позицию по идентификатору.
func (c *Cart) Line(id string) (CartLine, error) {
	idx := c.index(id)
	if idx < 0 {
		return CartLine{}, ErrLineNotFound
	}
	return c.lines[idx], nil
}

// Add добавляет артикул. Если позиция с таким номером уже есть, количество
// увеличивается на qty, а lineID не используется. merged сообщает, что позиция уже была.
func (c *Cart) Add(article Article, qty int, lineID string) (line CartLine, merged bool, err error) {
	if article.Number == "" {
		return CartLine{}, false, ErrArticleNumberRequired
	}
	if err := checkQuantity(qty); err != nil {
		return CartLine{}, false, err
	}

	for i := range c.lines {
		if c.lines[i].ArticleNumber == article.Number {
			// Сравнение без сложения: сумма могла бы переполнить int.
			if qty > MaxLineQuantity-c.lines[i].Quantity {
				return CartLine{}, false, ErrQuantityTooLarge
			}
			c.lines[i].Quantity += qty
			return c.lines[i], true, nil
		}
	}

	line = CartLine{
		ID:            lineID,
		ArticleNumber: article.Number,
		Name:          article.Name,
		Unit:          article.Unit,
		Price:         article.Price,
		Quantity:      qty,
	}
	c.lines = append(c.lines, line)
	return line, false, nil
}

// SetQuantity заменяет количество позиции. Количество <= 0 здесь недопустимо:
// удаление проходит через Remove и требует подтверждения.
func (c *Cart) SetQuantity(id string, qty int) (CartLine, error) {
	if err := checkQuantity(qty); err != nil {
		return CartLine{}, err
	}
	idx := c.index(id)
	if idx < 0 {
		return CartLine{}, ErrLineNotFound
	}
	c.lines[idx].Quantity = qty
	return c.lines[idx], nil
}

// Remove удаляет позицию, сдвигая последующие.
func (c *Cart) Remove(id string) (CartLine, error) {
	idx := c.index(id)
	if idx < 0 {
		return CartLine{}, ErrLineNotFound
	}
	removed := c.lines[idx]
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	return removed, nil
}

// Clear очищает корзину.
func (c *Cart) Clear() {
	c.lines = nil
}

// Totals считает итоги корзины.
func (c *Cart) Totals() Totals {
	return ComputeTotals(c.lines)
}

// ComputeTotals считает итоги по произвольному набору позиций.
func ComputeTotals(lines []CartLine) Totals {
	totals := Totals{Lines: len(lines), Amount: decimal.Zero}
	for _, line := range lines {
		totals.Items += line.Quantity
		totals.Amount = totals.Amount.Add(line.Total())
	}
	return totals
}

func checkQuantity(qty int) error {
	switch {
	case qty < 1:
		return ErrQuantityInvalid
	case qty > MaxLineQuantity:
		return ErrQuantityTooLarge
	}
	return nil
}

func (c *Cart) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}
