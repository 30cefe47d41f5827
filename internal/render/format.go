// Package render готовит данные сессии к показу: JSON-модели и HTML-фрагменты
// в немецком формате.
package render

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout = "02.01.2006"
	timeLayout = "15:04:05"
)

const (
	groupSeparator   = '.'
	decimalSeparator = ','
)

// FormatAmount форматирует сумму как de-DE: группы через точку, ровно два знака
// после запятой. Работает по десятичной строке, без перехода к float64.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	intPart, frac, _ := strings.Cut(strings.TrimPrefix(fixed, "-"), ".")

	var b strings.Builder
	b.Grow(len(fixed) + len(intPart)/3)
	if negative {
		b.WriteByte('-')
	}
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(groupSeparator)
		}
		b.WriteByte(intPart[i])
	}
	b.WriteByte(decimalSeparator)
	b.WriteString(frac)
	return b.String()
}

// FormatCurrency - FormatAmount с символом евро.
func FormatCurrency(d decimal.Decimal) string {
	return FormatAmount(d) + " €"
}

// FormatDate - дата как 07.03.2026.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatTime - время как 09:05:03.
func FormatTime(t time.Time) string {
	return t.Format(timeLayout)
}
