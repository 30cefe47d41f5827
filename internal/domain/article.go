package domain

import "github.com/shopspring/decimal"

// Article - позиция каталога. Number используется как ключ поиска,
// уникальность не проверяется: при дублях выигрывает первая запись.
type Article struct {
	Number string
	Name   string
	Unit   string
	Price  decimal.Decimal
}

// Validate проверяет запись каталога. Пустой номер допустим:
// такой артикул виден в поиске, но добавить его в корзину нельзя.
func (a Article) Validate() error {
	if a.Price.IsNegative() {
		return ErrArticlePriceInvalid
	}
	return nil
}
