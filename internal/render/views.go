package render

import (
	"time"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
	"github.com/vladislavdragonenkov/messeorder/internal/search"
	"github.com/vladislavdragonenkov/messeorder/internal/session"
)

var orderNotes = [...]string{
	"Alle Preise verstehen sich zzgl. MwSt.",
	"Lieferzeit: 2-3 Werktage",
	"Bei Rückfragen wenden Sie sich an unser Service-Team",
}

// OrderNotes возвращает примечания под подтверждением заказа; каждый вызов - новая копия.
func OrderNotes() []string {
	return append([]string(nil), orderNotes[:]...)
}

// CustomerView - клиент для показа.
type CustomerView struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Street     string `json:"street"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// LineView - позиция корзины или заказа.
type LineView struct {
	ID            string `json:"id,omitempty"`
	ArticleNumber string `json:"articleNumber"`
	Name          string `json:"name"`
	Unit          string `json:"unit"`
	Quantity      int    `json:"quantity"`
	Price         string `json:"price"`
	PriceText     string `json:"priceText"`
	Total         string `json:"total"`
	TotalText     string `json:"totalText"`
}

// CartView - корзина с итогами.
type CartView struct {
	Empty      bool       `json:"empty"`
	Lines      []LineView `json:"lines"`
	LineCount  int        `json:"lineCount"`
	Items      int        `json:"items"`
	Amount     string     `json:"amount"`
	AmountText string     `json:"amountText"`
}

// ReadinessView - состояние кнопки «Bestellung anzeigen».
type ReadinessView struct {
	State      string `json:"state"`
	CanProceed bool   `json:"canProceed"`
	Label      string `json:"label"`
}

// OrderView - подтверждение заказа.
type OrderView struct {
	ID         string       `json:"id"`
	CreatedAt  time.Time    `json:"createdAt"`
	Date       string       `json:"date"`
	Time       string       `json:"time"`
	Customer   CustomerView `json:"customer"`
	Lines      []LineView   `json:"lines"`
	Items      int          `json:"items"`
	Amount     string       `json:"amount"`
	AmountText string       `json:"amountText"`
	Currency   string       `json:"currency"`
	Notes      []string     `json:"notes"`
}

// NoticeView - сообщение для пользователя.
type NoticeView struct {
	ID         string `json:"id"`
	Slot       string `json:"slot"`
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Persistent bool   `json:"persistent"`
}

// SessionView - полный снимок сессии.
type SessionView struct {
	ID        string        `json:"id"`
	Phase     string        `json:"phase"`
	Customer  *CustomerView `json:"customer,omitempty"`
	Cart      CartView      `json:"cart"`
	Readiness ReadinessView `json:"readiness"`
	Order     *OrderView    `json:"order,omitempty"`
	Notices   []NoticeView  `json:"notices"`
}

// CustomerResultsView - результат поиска клиентов.
type CustomerResultsView struct {
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Hits       []CustomerView `json:"hits"`
	Suppressed int            `json:"suppressed"`
}

// ArticleView - артикул в результатах поиска.
type ArticleView struct {
	Number    string `json:"articleNumber"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Price     string `json:"price"`
	PriceText string `json:"priceText"`
}

// ArticleResultsView - результат поиска артикулов.
type ArticleResultsView struct {
	Status     string        `json:"status"`
	Message    string        `json:"message,omitempty"`
	Hits       []ArticleView `json:"hits"`
	Suppressed int           `json:"suppressed"`
}

// NewSessionView строит модель сессии.
func NewSessionView(v session.View) SessionView {
	out := SessionView{
		ID:        v.ID,
		Phase:     string(v.Phase),
		Cart:      NewCartView(v.Lines),
		Readiness: NewReadinessView(v.Readiness),
		Notices:   NewNoticeViews(v.Notices),
	}
	if v.Customer != nil {
		customer := NewCustomerView(v.Customer.Index, v.Customer.Customer)
		out.Customer = &customer
	}
	if v.Order != nil {
		order := NewOrderView(*v.Order)
		out.Order = &order
	}
	return out
}

// NewCustomerView строит модель клиента.
func NewCustomerView(index int, c domain.Customer) CustomerView {
	return CustomerView{
		Index:      index,
		Name:       c.Name,
		Street:     c.Street,
		PostalCode: c.PostalCode,
		City:       c.City,
		Email:      c.Email,
		Phone:      c.Phone,
	}
}

// NewCartView строит модель корзины.
func NewCartView(lines []domain.CartLine) CartView {
	totals := domain.ComputeTotals(lines)
	out := CartView{
		Empty:      len(lines) == 0,
		Lines:      make([]LineView, 0, len(lines)),
		LineCount:  totals.Lines,
		Items:      totals.Items,
		Amount:     totals.Amount.StringFixed(2),
		AmountText: FormatAmount(totals.Amount),
	}
	for _, line := range lines {
		total := line.Total()
		out.Lines = append(out.Lines, LineView{
			ID:            line.ID,
			ArticleNumber: line.ArticleNumber,
			Name:          line.Name,
			Unit:          line.Unit,
			Quantity:      line.Quantity,
			Price:         line.Price.StringFixed(2),
			PriceText:     FormatAmount(line.Price),
			Total:         total.StringFixed(2),
			TotalText:     FormatAmount(total),
		})
	}
	return out
}

// NewReadinessView строит модель кнопки оформления.
func NewReadinessView(r domain.Readiness) ReadinessView {
	return ReadinessView{
		State:      r.String(),
		CanProceed: r.CanProceed(),
		Label:      r.Label(),
	}
}

// NewOrderView строит модель подтверждения.
func NewOrderView(o domain.Order) OrderView {
	out := OrderView{
		ID:         o.ID,
		CreatedAt:  o.CreatedAt,
		Date:       FormatDate(o.CreatedAt),
		Time:       FormatTime(o.CreatedAt),
		Customer:   NewCustomerView(o.CustomerIndex, o.Customer),
		Lines:      make([]LineView, 0, len(o.Lines)),
		Items:      o.Totals.Items,
		Amount:     o.Totals.Amount.StringFixed(2),
		AmountText: FormatCurrency(o.Totals.Amount),
		Currency:   domain.Currency,
		Notes:      OrderNotes(),
	}
	for _, line := range o.Lines {
		out.Lines = append(out.Lines, LineView{
			ArticleNumber: line.ArticleNumber,
			Name:          line.Name,
			Unit:          line.Unit,
			Quantity:      line.Quantity,
			Price:         line.Price.StringFixed(2),
			PriceText:     FormatAmount(line.Price),
			Total:         line.Total.StringFixed(2),
			TotalText:     FormatAmount(line.Total),
		})
	}
	return out
}

// NewNoticeViews строит модели сообщений.
func NewNoticeViews(notices []session.Notice) []NoticeView {
	out := make([]NoticeView, 0, len(notices))
	for _, n := range notices {
		out = append(out, NoticeView{
			ID:         n.ID,
			Slot:       string(n.Slot),
			Kind:       string(n.Kind),
			Text:       n.Text,
			Persistent: n.Persistent,
		})
	}
	return out
}

// NewCustomerResults строит модель результатов поиска клиентов.
func NewCustomerResults(res search.CustomerResult) CustomerResultsView {
	out := CustomerResultsView{
		Status:     string(res.Status),
		Message:    res.Message(),
		Hits:       make([]CustomerView, 0, len(res.Hits)),
		Suppressed: res.Suppressed,
	}
	for _, hit := range res.Hits {
		out.Hits = append(out.Hits, NewCustomerView(hit.Index, hit.Customer))
	}
	return out
}

// NewArticleResults строит модель результатов поиска артикулов.
func NewArticleResults(res search.ArticleResult) ArticleResultsView {
	out := ArticleResultsView{
		Status:     string(res.Status),
		Message:    res.Message(),
		Hits:       make([]ArticleView, 0, len(res.Hits)),
		Suppressed: res.Suppressed,
	}
	for _, a := range res.Hits {
		out.Hits = append(out.Hits, ArticleView{
			Number:    a.Number,
			Name:      a.Name,
			Unit:      a.Unit,
			Price:     a.Price.StringFixed(2),
			PriceText: FormatAmount(a.Price),
		})
	}
	return out
}
