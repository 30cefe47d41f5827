package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Customer описывает клиента выставки. Все поля, кроме Name, необязательны.
// Идентичность позиционная: клиента определяет его индекс в каталоге.
type Customer struct {
	Name       string
	Street     string
	PostalCode string
	City       string
	Email      string
	Phone      string
}

// Normalize обрезает пробелы во всех полях, как это делает форма нового клиента.
func (c Customer) Normalize() Customer {
	return Customer{
		Name:       strings.TrimSpace(c.Name),
		Street:     strings.TrimSpace(c.Street),
		PostalCode: strings.TrimSpace(c.PostalCode),
		City:       strings.TrimSpace(c.City),
		Email:      strings.TrimSpace(c.Email),
		Phone:      strings.TrimSpace(c.Phone),
	}
}

// ValidateForm проверяет клиента, введённого через форму.
// Имя обязательно, e-mail проверяется только если указан.
func (c Customer) ValidateForm() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrCustomerNameRequired
	}
	if email := strings.TrimSpace(c.Email); email != "" && !IsValidEmail(email) {
		return ErrEmailInvalid
	}
	return nil
}

// IsValidEmail проверяет форму адреса: local@domain.tld без пробелов.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// SearchText возвращает строку, по которой ищется клиент: имя, e-mail и город.
func (c Customer) SearchText() string {
	return strings.Join([]string{c.Name, c.Email, c.City}, " ")
}
