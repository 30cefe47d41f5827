package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

// text принимает строку, число или null: в выгрузках plz и telefon
// нередко приходят числами.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*t = text(n.String())
		return nil
	}
}

type customerRecord struct {
	Name       text `json:"name"`
	Street     text `json:"strasse"`
	PostalCode text `json:"plz"`
	City       text `json:"ort"`
	Email      text `json:"email"`
	Phone      text `json:"telefon"`
}

func (r customerRecord) toDomain() domain.Customer {
	return domain.Customer{
		Name:       string(r.Name),
		Street:     string(r.Street),
		PostalCode: string(r.PostalCode),
		City:       string(r.City),
		Email:      string(r.Email),
		Phone:      string(r.Phone),
	}
}

type articleRecord struct {
	Number text            `json:"artikelnummer"`
	Name   text            `json:"name"`
	Unit   text            `json:"einheit"`
	Price  decimal.Decimal `json:"preis"`
}

func (r articleRecord) toDomain() domain.Article {
	return domain.Article{
		Number: string(r.Number),
		Name:   string(r.Name),
		Unit:   string(r.Unit),
		Price:  r.Price,
	}
}
