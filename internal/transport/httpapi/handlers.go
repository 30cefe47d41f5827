package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
	"github.com/vladislavdragonenkov/messeorder/internal/render"
	"github.com/vladislavdragonenkov/messeorder/internal/session"
)

type selectCustomerRequest struct {
	Index *int `json:"index"`
}

type customerFormRequest struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

type addArticleRequest struct {
	ArticleNumber string `json:"articleNumber"`
	Quantity      *int   `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// confirmation: ?confirm=true означает согласие пользователя в диалоге.
func confirmation(r *http.Request) session.Confirmer {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); ok {
		return session.Accept
	}
	return session.Decline
}

func (a *API) respondSession(w http.ResponseWriter, status int, s *session.Session) {
	writeJSON(w, status, render.NewSessionView(s.View()))
}

func (a *API) createSession(w http.ResponseWriter, _ *http.Request) {
	s := a.registry.Create()
	w.Header().Set("Location", "/api/v1/sessions/"+s.ID())
	a.respondSession(w, http.StatusCreated, s)
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	a.respondSession(w, http.StatusOK, sessionFrom(r))
}

func (a *API) closeSession(w http.ResponseWriter, r *http.Request) {
	a.registry.Close(sessionFrom(r).ID())
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) searchCustomers(w http.ResponseWriter, r *http.Request) {
	res, err := sessionFrom(r).SearchCustomers(r.URL.Query().Get("q"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, render.NewCustomerResults(res))
}

func (a *API) searchCustomersHTML(w http.ResponseWriter, r *http.Request) {
	res, err := sessionFrom(r).SearchCustomers(r.URL.Query().Get("q"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	view := render.NewCustomerResults(res)
	a.writeHTML(w, r, func(out io.Writer) error { return render.CustomerResults(out, view) })
}

func (a *API) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerFormRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	s := sessionFrom(r)
	if _, err := s.CreateCustomer(domain.Customer{
		Name:       req.Name,
		Street:     req.Street,
		PostalCode: req.PostalCode,
		City:       req.City,
		Email:      req.Email,
		Phone:      req.Phone,
	}); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSession(w, http.StatusCreated, s)
}

func (a *API) selectCustomer(w http.ResponseWriter, r *http.Request) {
	var req selectCustomerRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.Index == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Ungültige Anfrage: index fehlt.")
		return
	}

	s := sessionFrom(r)
	if _, err := s.SelectCustomer(*req.Index); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSession(w, http.StatusOK, s)
}

func (a *API) clearCustomer(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if err := s.ClearCustomer(); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSession(w, http.StatusOK, s)
}

func (a *API) searchArticles(w http.ResponseWriter, r *http.Request) {
	res, err := sessionFrom(r).SearchArticles(r.URL.Query().Get("q"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, render.NewArticleResults(res))
}

func (a *API) searchArticlesHTML(w http.ResponseWriter, r *http.Request) {
	res, err := sessionFrom(r).SearchArticles(r.URL.Query().Get("q"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	view := render.NewArticleResults(res)
	a.writeHTML(w, r, func(out io.Writer) error { return render.ArticleResults(out, view) })
}

func (a *API) addArticle(w http.ResponseWriter, r *http.Request) {
	var req addArticleRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	s := sessionFrom(r)
	res, err := s.AddArticle(req.ArticleNumber, qty)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.Merged {
		status = http.StatusOK
	}
	a.respondSession(w, status, s)
}

func (a *API) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := a.decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Ungültige Anfrage: quantity fehlt.")
		return
	}

	s := sessionFrom(r)
	if _, err := s.UpdateQuantity(chi.URLParam(r, "lineID"), *req.Quantity, confirmation(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSession(w, http.StatusOK, s)
}

func (a *API) removeLine(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if err := s.RemoveLine(chi.URLParam(r, "lineID"), confirmation(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSession(w, http.StatusOK, s)
}

func (a *API) clearCart(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if _, err := s.ClearCart(confirmation(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSession(w, http.StatusOK, s)
}

func (a *API) cartHTML(w http.ResponseWriter, r *http.Request) {
	view := render.NewCartView(sessionFrom(r).View().Lines)
	a.writeHTML(w, r, func(out io.Writer) error { return render.Cart(out, view) })
}

func (a *API) finalizeOrder(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if _, err := s.FinalizeOrder(); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSession(w, http.StatusOK, s)
}

func (a *API) reopenOrder(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if err := s.ReopenOrder(); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSession(w, http.StatusOK, s)
}

func (a *API) completeOrder(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	if _, err := s.CompleteOrder(r.Context()); err != nil {
		a.fail(w, r, err)
		return
	}
	a.respondSession(w, http.StatusOK, s)
}

func (a *API) orderHTML(w http.ResponseWriter, r *http.Request) {
	view := sessionFrom(r).View()
	if view.Order == nil {
		a.fail(w, r, domain.ErrOrderNotFinalized)
		return
	}
	order := render.NewOrderView(*view.Order)
	a.writeHTML(w, r, func(out io.Writer) error { return render.Order(out, order) })
}

func (a *API) startNewOrder(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	s.StartNewOrder()
	a.respondSession(w, http.StatusOK, s)
}

func (a *API) listNotices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, render.NewNoticeViews(sessionFrom(r).Notices()))
}

func (a *API) dismissNotice(w http.ResponseWriter, r *http.Request) {
	if !sessionFrom(r).DismissNotice(chi.URLParam(r, "nid")) {
		writeError(w, http.StatusNotFound, codeNotFound, "Meldung nicht gefunden.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	if a.archive == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "Archiv ist nicht konfiguriert.")
		return
	}

	limit := defaultOrdersLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Ungültige Anfrage: limit muss größer als 0 sein.")
			return
		}
		limit = min(n, maxOrdersLimit)
	}

	orders, err := a.archive.List(r.Context(), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	views := make([]render.OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, render.NewOrderView(order))
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	if a.archive == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "Archiv ist nicht konfiguriert.")
		return
	}
	order, err := a.archive.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, render.NewOrderView(order))
}
