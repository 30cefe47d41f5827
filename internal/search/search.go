// Package search фильтрует каталог по подстроке.
package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

const (
	// MinQueryLength - запрос короче этого числа символов не выполняется.
	MinQueryLength = 2
	// CustomerLimit - сколько клиентов показывается за раз.
	CustomerLimit = 10
	// ArticleLimit - сколько артикулов показывается за раз.
	ArticleLimit = 15
)

// Status - исход поиска.
type Status string

const (
	// StatusRefine - запрос слишком короткий, нужно уточнить.
	StatusRefine Status = "refine"
	// StatusNotFound - совпадений нет.
	StatusNotFound Status = "not_found"
	// StatusFound - есть совпадения.
	StatusFound Status = "found"
)

// CustomerHit - найденный клиент и его позиция в каталоге.
type CustomerHit struct {
	Index    int
	Customer domain.Customer
}

// CustomerResult - результат поиска клиентов.
type CustomerResult struct {
	Status Status
	Hits   []CustomerHit
	// Total - число совпадений до усечения.
	Total int
	// Suppressed - сколько совпадений не вошло в Hits.
	Suppressed int
}

// Message - текст для пользователя.
func (r CustomerResult) Message() string {
	return message(r.Status, r.Suppressed, "Keine Kunden gefunden.")
}

// ArticleResult - результат поиска артикулов.
type ArticleResult struct {
	Status     Status
	Hits       []domain.Article
	Total      int
	Suppressed int
}

// Message - текст для пользователя.
func (r ArticleResult) Message() string {
	return message(r.Status, r.Suppressed, "Keine Artikel gefunden.")
}

// Customers ищет клиентов по имени, e-mail и городу без учёта регистра.
// Порядок совпадений - порядок каталога.
func Customers(customers []domain.Customer, query string) CustomerResult {
	needle, ok := normalize(query)
	if !ok {
		return CustomerResult{Status: StatusRefine}
	}

	var res CustomerResult
	for idx, customer := range customers {
		if !strings.Contains(strings.ToLower(customer.SearchText()), needle) {
			continue
		}
		res.Total++
		if len(res.Hits) < CustomerLimit {
			res.Hits = append(res.Hits, CustomerHit{Index: idx, Customer: customer})
		}
	}
	res.Suppressed = res.Total - len(res.Hits)
	res.Status = statusFor(res.Total)
	return res
}

// Articles ищет артикулы по названию без учёта регистра.
func Articles(articles []domain.Article, query string) ArticleResult {
	needle, ok := normalize(query)
	if !ok {
		return ArticleResult{Status: StatusRefine}
	}

	var res ArticleResult
	for _, article := range articles {
		if article.Name == "" || !strings.Contains(strings.ToLower(article.Name), needle) {
			continue
		}
		res.Total++
		if len(res.Hits) < ArticleLimit {
			res.Hits = append(res.Hits, article)
		}
	}
	res.Suppressed = res.Total - len(res.Hits)
	res.Status = statusFor(res.Total)
	return res
}

func normalize(query string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(needle) < MinQueryLength {
		return "", false
	}
	return needle, true
}

func statusFor(total int) Status {
	if total == 0 {
		return StatusNotFound
	}
	return StatusFound
}

func message(status Status, suppressed int, notFound string) string {
	switch status {
	case StatusRefine:
		return fmt.Sprintf("Bitte geben Sie mindestens %d Zeichen ein.", MinQueryLength)
	case StatusNotFound:
		return notFound
	}
	if suppressed > 0 {
		return fmt.Sprintf("... und %d weitere Ergebnisse. Verfeinern Sie die Suche.", suppressed)
	}
	return ""
}
