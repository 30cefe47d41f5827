package render

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var fragments = template.Must(
	template.New("fragments").
		Funcs(template.FuncMap{
			"inc": func(n int) int { return n + 1 },
			"dec": func(n int) int { return n - 1 },
		}).
		ParseFS(templateFS, "templates/*.html.tmpl"),
)

// Order пишет подтверждение заказа.
func Order(w io.Writer, v OrderView) error {
	return fragments.ExecuteTemplate(w, "order", v)
}

// Cart пишет таблицу корзины.
func Cart(w io.Writer, v CartView) error {
	return fragments.ExecuteTemplate(w, "cart", v)
}

// CustomerResults пишет результаты поиска клиентов.
func CustomerResults(w io.Writer, v CustomerResultsView) error {
	return fragments.ExecuteTemplate(w, "customers", v)
}

// ArticleResults пишет результаты поиска артикулов.
func ArticleResults(w io.Writer, v ArticleResultsView) error {
	return fragments.ExecuteTemplate(w, "articles", v)
}
