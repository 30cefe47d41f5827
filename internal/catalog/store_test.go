package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

const (
	customersJSON = `[
		{"name": "Abel GmbH", "strasse": "Hauptstr. 1", "plz": 10115, "ort": "Berlin", "email": "info@abel.de", "telefon": "030 123"},
		{"name": "Xab Inc", "ort": "Hamburg", "telefon": null},
		{"name": "Other"}
	]`
	articlesJSON = `[
		{"artikelnummer": "A1", "name": "Widget", "einheit": "pc", "preis": 9.99},
		{"artikelnummer": 1002, "name": "Kabel", "einheit": "m", "preis": "0.35"}
	]`
)

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return logger.WithField("component", "catalog-test")
}

func writeCatalog(t *testing.T, customers, articles string) string {
	t.Helper()
	dir := t.TempDir()
	if customers != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, CustomersResource), []byte(customers), 0o600))
	}
	if articles != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ArticlesResource), []byte(articles), 0o600))
	}
	return dir
}

func TestStore_LoadFromDir(t *testing.T) {
	store := NewStore(testLogger())
	require.False(t, store.Ready())
	require.ErrorIs(t, store.Err(), domain.ErrCatalogUnavailable)

	err := store.Load(context.Background(), NewDirSource(writeCatalog(t, customersJSON, articlesJSON)))
	require.NoError(t, err)
	require.True(t, store.Ready())
	require.NoError(t, store.Err())

	customers := store.Customers()
	require.Len(t, customers, 3)
	require.Equal(t, "10115", customers[0].PostalCode, "numeric plz is kept as text")
	require.Equal(t, "", customers[1].Phone)

	article, err := store.ArticleByNumber("1002")
	require.NoError(t, err)
	require.True(t, article.Price.Equal(decimal.RequireFromString("0.35")))

	_, err = store.ArticleByNumber("nope")
	require.ErrorIs(t, err, domain.ErrArticleNotFound)

	nCustomers, nArticles := store.Size()
	require.Equal(t, 3, nCustomers)
	require.Equal(t, 2, nArticles)
}

func TestStore_LoadOnlyOnce(t *testing.T) {
	store := NewStore(testLogger())
	src := NewDirSource(writeCatalog(t, customersJSON, articlesJSON))
	require.NoError(t, store.Load(context.Background(), src))
	require.ErrorIs(t, store.Load(context.Background(), src), domain.ErrCatalogAlreadyLoaded)
}

func TestStore_LoadFailures(t *testing.T) {
	cases := []struct {
		name      string
		customers string
		articles  string
		resource  string
	}{
		{name: "missing customers", articles: articlesJSON, resource: CustomersResource},
		{name: "missing articles", customers: customersJSON, resource: ArticlesResource},
		{name: "customers not json", customers: "<html>", articles: articlesJSON, resource: CustomersResource},
		{name: "articles object", customers: customersJSON, articles: `{"artikelnummer": "A1"}`, resource: ArticlesResource},
		{name: "articles null", customers: customersJSON, articles: `null`, resource: ArticlesResource},
		{name: "negative price", customers: customersJSON, articles: `[{"artikelnummer": "A1", "preis": -1}]`, resource: ArticlesResource},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore(testLogger())
			err := store.Load(context.Background(), NewDirSource(writeCatalog(t, tc.customers, tc.articles)))
			require.Error(t, err)
			require.ErrorIs(t, err, domain.ErrCatalogLoad)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			require.Equal(t, tc.resource, loadErr.Resource)

			require.False(t, store.Ready())
			require.Empty(t, store.Customers(), "no partial catalog is published")
			require.Empty(t, store.Articles())
			require.ErrorIs(t, store.Err(), domain.ErrCatalogLoad)
		})
	}
}

func TestStore_LoadFromHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data/"+CustomersResource, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "messeorder/") {
			http.Error(w, "unexpected user agent", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(customersJSON))
	})
	mux.HandleFunc("/data/"+ArticlesResource, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articlesJSON))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL+"/data", srv.Client())
	require.NoError(t, err)

	store := NewStore(testLogger())
	require.NoError(t, store.Load(context.Background(), src))
	require.True(t, store.Ready())
}

func TestStore_LoadFromHTTPNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, nil)
	require.NoError(t, err)

	store := NewStore(testLogger())
	err = store.Load(context.Background(), src)
	require.ErrorIs(t, err, domain.ErrCatalogLoad)
	require.Contains(t, err.Error(), "404")
}

func TestNewHTTPSource_RejectsScheme(t *testing.T) {
	_, err := NewHTTPSource("ftp://example.org/data", nil)
	require.Error(t, err)
}

func TestStore_CustomerAccess(t *testing.T) {
	store := NewStore(testLogger())

	_, err := store.AppendCustomer(domain.Customer{Name: "Early"})
	require.ErrorIs(t, err, domain.ErrCatalogUnavailable)

	require.NoError(t, store.Load(context.Background(), NewDirSource(writeCatalog(t, customersJSON, articlesJSON))))

	idx, err := store.AppendCustomer(domain.Customer{Name: "Abel GmbH"})
	require.NoError(t, err)
	require.Equal(t, 3, idx)

	// Одинаковые имена допустимы, клиенты различаются позицией.
	first, err := store.Customer(0)
	require.NoError(t, err)
	appended, err := store.Customer(idx)
	require.NoError(t, err)
	require.Equal(t, first.Name, appended.Name)
	require.NotEqual(t, first.City, appended.City)

	_, err = store.Customer(42)
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
	_, err = store.Customer(-1)
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
