package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/messeorder/internal/catalog"
	"github.com/vladislavdragonenkov/messeorder/internal/render"
	"github.com/vladislavdragonenkov/messeorder/internal/service/submission"
	"github.com/vladislavdragonenkov/messeorder/internal/session"
	"github.com/vladislavdragonenkov/messeorder/internal/storage/memory"
)

const (
	customersJSON = `[
		{"name": "Abel GmbH", "strasse": "Hauptstr. 1", "plz": 24103, "ort": "Kiel", "email": "info@abel.example"},
		{"name": "Xab Inc", "ort": "Hamburg"}
	]`
	articlesJSON = `[
		{"artikelnummer": "A1", "name": "Widget", "einheit": "Stk", "preis": 9.99},
		{"artikelnummer": "B2", "name": "Kabel", "einheit": "m", "preis": "1.50"}
	]`
)

type harness struct {
	t       *testing.T
	server  *httptest.Server
	archive *memory.Archive
}

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "httpapi-test")
}

func newHarness(t *testing.T, loadCatalog bool) *harness {
	t.Helper()

	store := catalog.NewStore(quietLogger())
	if loadCatalog {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, catalog.CustomersResource), []byte(customersJSON), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, catalog.ArticlesResource), []byte(articlesJSON), 0o600))
		require.NoError(t, store.Load(context.Background(), catalog.NewDirSource(dir)))
	}

	archive := memory.NewArchive()
	registry := session.NewRegistry(session.Deps{
		Catalog:   store,
		Submitter: submission.NewService(archive, submission.WithLogger(quietLogger())),
		Logger:    quietLogger(),
		Now:       func() time.Time { return time.Date(2026, 3, 7, 9, 5, 3, 0, time.UTC) },
		AfterFunc: func(time.Duration, func()) {},
	})

	api := New(registry, WithArchive(archive), WithLogger(quietLogger()))
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)

	return &harness{t: t, server: server, archive: archive}
}

func (h *harness) do(method, path string, body any) *http.Response {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, h.server.URL+path, reader)
	require.NoError(h.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.server.Client().Do(req)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (h *harness) newSession() string {
	h.t.Helper()
	resp := h.do(http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(h.t, http.StatusCreated, resp.StatusCode)
	view := decode[render.SessionView](h.t, resp)
	require.NotEmpty(h.t, view.ID)
	require.Equal(h.t, "/api/v1/sessions/"+view.ID, resp.Header.Get("Location"))
	return view.ID
}

func TestAPI_FullOrderFlow(t *testing.T) {
	h := newHarness(t, true)
	sid := h.newSession()
	base := "/api/v1/sessions/" + sid

	resp := h.do(http.MethodGet, base+"/customers?q=abel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := decode[render.CustomerResultsView](t, resp)
	require.Len(t, results.Hits, 1)
	assert.Equal(t, 0, results.Hits[0].Index)

	resp = h.do(http.MethodPost, base+"/customer", map[string]int{"index": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[render.SessionView](t, resp)
	require.NotNil(t, view.Customer)
	assert.Equal(t, "Abel GmbH", view.Customer.Name)
	assert.False(t, view.Readiness.CanProceed)

	resp = h.do(http.MethodPost, base+"/cart/items", map[string]any{"articleNumber": "A1", "quantity": 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = h.do(http.MethodPost, base+"/cart/items", map[string]any{"articleNumber": " A1 "})
	require.Equal(t, http.StatusOK, resp.StatusCode, "same article merges into the existing line")
	view = decode[render.SessionView](t, resp)
	require.Len(t, view.Cart.Lines, 1)
	assert.Equal(t, 6, view.Cart.Lines[0].Quantity)
	assert.Equal(t, "59.94", view.Cart.Amount)
	assert.True(t, view.Readiness.CanProceed)

	resp = h.do(http.MethodPost, base+"/order", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[render.SessionView](t, resp)
	require.NotNil(t, view.Order)
	assert.Equal(t, "review", view.Phase)
	assert.Regexp(t, `^ORD-20260307-090503-[0-9A-Z]{4}$`, view.Order.ID)
	orderID := view.Order.ID

	resp = h.do(http.MethodGet, base+"/order.html", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Gesamtsumme: 59,94 €")
	assert.Contains(t, string(page), orderID)

	resp = h.do(http.MethodPost, base+"/cart/items", map[string]any{"articleNumber": "B2"})
	require.Equal(t, http.StatusConflict, resp.StatusCode, "cart is frozen while the order is shown")
	assert.Equal(t, codeOrderLocked, decode[ErrorResponse](t, resp).Error)

	resp = h.do(http.MethodPost, base+"/order/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", decode[render.SessionView](t, resp).Phase)

	resp = h.do(http.MethodGet, "/api/v1/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	archived := decode[render.OrderView](t, resp)
	assert.Equal(t, "59.94", archived.Amount)
	assert.Equal(t, "Abel GmbH", archived.Customer.Name)

	resp = h.do(http.MethodGet, "/api/v1/orders?limit=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]render.OrderView](t, resp), 1)

	resp = h.do(http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view = decode[render.SessionView](t, resp)
	assert.Equal(t, "building", view.Phase)
	assert.Nil(t, view.Customer)
	assert.True(t, view.Cart.Empty)
}

func TestAPI_ValidationErrors(t *testing.T) {
	h := newHarness(t, true)
	base := "/api/v1/sessions/" + h.newSession()

	cases := []struct {
		name    string
		body    any
		status  int
		message string
	}{
		{"zero quantity", map[string]any{"articleNumber": "A1", "quantity": 0}, http.StatusUnprocessableEntity, "Menge muss größer als 0 sein."},
		{"blank number", map[string]any{"articleNumber": "  "}, http.StatusUnprocessableEntity, "Bitte geben Sie eine Artikelnummer ein."},
		{"unknown number", map[string]any{"articleNumber": "ZZ9"}, http.StatusUnprocessableEntity, "Artikel nicht gefunden."},
		{"unknown field", map[string]any{"sku": "A1"}, http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := h.do(http.MethodPost, base+"/cart/items", tc.body)
			require.Equal(t, tc.status, resp.StatusCode)
			if tc.message != "" {
				assert.Equal(t, tc.message, decode[ErrorResponse](t, resp).Message)
			}
		})
	}

	resp := h.do(http.MethodGet, base, nil)
	view := decode[render.SessionView](t, resp)
	assert.True(t, view.Cart.Empty, "rejected commands leave the cart untouched")

	var articleNotice *render.NoticeView
	for i := range view.Notices {
		if view.Notices[i].Slot == string(session.SlotArticle) {
			articleNotice = &view.Notices[i]
		}
	}
	require.NotNil(t, articleNotice)
	assert.Equal(t, `Artikel mit der Nummer "ZZ9" nicht gefunden.`, articleNotice.Text)
}

func TestAPI_RemoveNeedsConfirmation(t *testing.T) {
	h := newHarness(t, true)
	base := "/api/v1/sessions/" + h.newSession()

	resp := h.do(http.MethodPost, base+"/cart/items", map[string]any{"articleNumber": "A1", "quantity": 2})
	view := decode[render.SessionView](t, resp)
	lineID := view.Cart.Lines[0].ID

	resp = h.do(http.MethodDelete, base+"/cart/items/"+lineID, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	errResp := decode[ErrorResponse](t, resp)
	assert.Equal(t, codeConfirmation, errResp.Error)
	assert.Equal(t, session.PromptRemoveLine, errResp.Prompt)

	resp = h.do(http.MethodPatch, base+"/cart/items/"+lineID, map[string]int{"quantity": 0})
	require.Equal(t, http.StatusConflict, resp.StatusCode, "quantity 0 is a removal and needs confirmation too")

	resp = h.do(http.MethodPatch, base+"/cart/items/"+lineID, map[string]int{"quantity": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decode[render.SessionView](t, resp).Cart.Lines[0].Quantity)

	resp = h.do(http.MethodDelete, base+"/cart/items/"+lineID+"?confirm=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[render.SessionView](t, resp).Cart.Empty)

	resp = h.do(http.MethodDelete, base+"/cart/items/"+lineID+"?confirm=true", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ClearCart(t *testing.T) {
	h := newHarness(t, true)
	base := "/api/v1/sessions/" + h.newSession()

	resp := h.do(http.MethodDelete, base+"/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "empty cart needs no confirmation")

	h.do(http.MethodPost, base+"/cart/items", map[string]any{"articleNumber": "B2"})

	resp = h.do(http.MethodDelete, base+"/cart", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, session.PromptClearCart, decode[ErrorResponse](t, resp).Prompt)

	resp = h.do(http.MethodDelete, base+"/cart?confirm=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[render.SessionView](t, resp).Cart.Empty)
}

func TestAPI_FinalizeNotReady(t *testing.T) {
	h := newHarness(t, true)
	base := "/api/v1/sessions/" + h.newSession()

	resp := h.do(http.MethodPost, base+"/order", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, session.MsgNotReady, decode[ErrorResponse](t, resp).Message)

	resp = h.do(http.MethodPost, base+"/order/complete", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, codeOrderNotFinalized, decode[ErrorResponse](t, resp).Error)

	resp = h.do(http.MethodGet, base+"/order.html", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_CreateCustomer(t *testing.T) {
	h := newHarness(t, true)
	base := "/api/v1/sessions/" + h.newSession()

	resp := h.do(http.MethodPost, base+"/customers", map[string]string{"name": "  ", "email": "x"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = h.do(http.MethodPost, base+"/customers", map[string]string{"name": " Neu AG ", "email": "neu@ag.example"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	view := decode[render.SessionView](t, resp)
	require.NotNil(t, view.Customer)
	assert.Equal(t, "Neu AG", view.Customer.Name)
	assert.Equal(t, 2, view.Customer.Index)

	resp = h.do(http.MethodDelete, base+"/customer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decode[render.SessionView](t, resp).Customer)

	resp = h.do(http.MethodPost, base+"/customer", map[string]int{"index": 99})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = h.do(http.MethodPost, base+"/customer", map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_HTMLFragments(t *testing.T) {
	h := newHarness(t, true)
	base := "/api/v1/sessions/" + h.newSession()

	resp := h.do(http.MethodGet, base+"/cart.html", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Der Warenkorb ist leer.")

	resp = h.do(http.MethodGet, base+"/articles.html?q=wid", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `data-article-number="A1"`)

	resp = h.do(http.MethodGet, base+"/customers.html?q=x", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Bitte geben Sie mindestens 2 Zeichen ein.")

	resp = h.do(http.MethodGet, base+"/articles?q=kab", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[render.ArticleResultsView](t, resp).Hits, 1)
}

func TestAPI_Notices(t *testing.T) {
	h := newHarness(t, true)
	base := "/api/v1/sessions/" + h.newSession()

	h.do(http.MethodPost, base+"/cart/items", map[string]any{"articleNumber": "A1"})

	resp := h.do(http.MethodGet, base+"/notices", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notices := decode[[]render.NoticeView](t, resp)
	require.Len(t, notices, 1)
	assert.Equal(t, `"Widget" zum Warenkorb hinzugefügt.`, notices[0].Text)

	resp = h.do(http.MethodDelete, base+"/notices/"+notices[0].ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = h.do(http.MethodDelete, base+"/notices/"+notices[0].ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CatalogUnavailable(t *testing.T) {
	h := newHarness(t, false)
	sid := h.newSession()
	base := "/api/v1/sessions/" + sid

	resp := h.do(http.MethodGet, base, nil)
	view := decode[render.SessionView](t, resp)
	require.Len(t, view.Notices, 1)
	assert.Equal(t, string(session.SlotGlobal), view.Notices[0].Slot)
	assert.True(t, view.Notices[0].Persistent)
	assert.Equal(t, session.MsgCatalogUnavailable, view.Notices[0].Text)

	resp = h.do(http.MethodGet, base+"/customers?q=abel", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, codeCatalogUnavailable, decode[ErrorResponse](t, resp).Error)
}

func TestAPI_UnknownSessionAndRoutes(t *testing.T) {
	h := newHarness(t, true)

	resp := h.do(http.MethodGet, "/api/v1/sessions/missing", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, codeNotFound, decode[ErrorResponse](t, resp).Error)

	resp = h.do(http.MethodGet, "/api/v1/orders/ORD-unknown", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = h.do(http.MethodGet, "/api/v1/orders?limit=abc", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = h.do(http.MethodGet, "/nowhere", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	sid := h.newSession()
	resp = h.do(http.MethodDelete, "/api/v1/sessions/"+sid, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = h.do(http.MethodGet, "/api/v1/sessions/"+sid, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClassify(t *testing.T) {
	status, code := classify(io.ErrUnexpectedEOF)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, codeInternal, code)

	status, _ = classify(&session.DeclinedError{Prompt: session.PromptClearCart})
	assert.Equal(t, http.StatusConflict, status)
}

func TestConfirmation(t *testing.T) {
	for raw, want := range map[string]bool{"true": true, "1": true, "false": false, "": false, "yes": false} {
		r := httptest.NewRequest(http.MethodDelete, "/x?confirm="+raw, nil)
		got := confirmation(r).Confirm("?")
		assert.Equal(t, want, got, "confirm=%q", raw)
	}
	assert.False(t, strings.Contains(codeConfirmation, " "))
}
