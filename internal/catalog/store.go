package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

// LoadError описывает неудачную загрузку одного из ресурсов каталога.
type LoadError struct {
	Resource string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Resource, e.Err)
}

// Unwrap позволяет сопоставлять и domain.ErrCatalogLoad, и исходную причину.
func (e *LoadError) Unwrap() []error {
	return []error{domain.ErrCatalogLoad, e.Err}
}

// Store держит клиентов и артикулы, загруженные при старте.
// Артикулы неизменны; клиенты только дописываются формой.
type Store struct {
	mu        sync.RWMutex
	customers []domain.Customer
	articles  []domain.Article
	loaded    bool
	loadErr   error
	logger    *log.Entry
}

// NewStore создаёт пустой каталог.
func NewStore(logger *log.Entry) *Store {
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}
	return &Store{logger: logger}
}

// Load последовательно читает клиентов, затем артикулы. При ошибке каталог
// остаётся пустым: частично загруженный каталог не используется. Повторов нет.
func (s *Store) Load(ctx context.Context, src Source) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return domain.ErrCatalogAlreadyLoaded
	}

	var customerRecords []customerRecord
	if err := readResource(ctx, src, CustomersResource, &customerRecords); err != nil {
		return s.fail(err)
	}
	var articleRecords []articleRecord
	if err := readResource(ctx, src, ArticlesResource, &articleRecords); err != nil {
		return s.fail(err)
	}

	customers := make([]domain.Customer, 0, len(customerRecords))
	for _, rec := range customerRecords {
		customers = append(customers, rec.toDomain())
	}
	articles := make([]domain.Article, 0, len(articleRecords))
	for idx, rec := range articleRecords {
		article := rec.toDomain()
		if err := article.Validate(); err != nil {
			return s.fail(&LoadError{Resource: ArticlesResource, Err: fmt.Errorf("record %d (%s): %w", idx, article.Number, err)})
		}
		articles = append(articles, article)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return domain.ErrCatalogAlreadyLoaded
	}
	s.customers = customers
	s.articles = articles
	s.loaded = true
	s.loadErr = nil

	s.logger.WithFields(log.Fields{
		"source":    src.String(),
		"customers": len(customers),
		"articles":  len(articles),
	}).Info("catalog loaded")
	return nil
}

func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
	s.logger.WithError(err).Error("catalog load failed")
	return err
}

func readResource(ctx context.Context, src Source, name string, dst any) error {
	body, err := src.Open(ctx, name)
	if err != nil {
		return &LoadError{Resource: name, Err: err}
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return &LoadError{Resource: name, Err: fmt.Errorf("read body: %w", err)}
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return &LoadError{Resource: name, Err: errors.New("body is not a json array")}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &LoadError{Resource: name, Err: fmt.Errorf("decode json: %w", err)}
	}
	return nil
}

// Ready сообщает, загружен ли каталог.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err возвращает ошибку последней загрузки, если каталог не готов.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loaded {
		return nil
	}
	if s.loadErr != nil {
		return s.loadErr
	}
	return domain.ErrCatalogUnavailable
}

// Customers возвращает копию списка клиентов в порядке каталога.
func (s *Store) Customers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Customer, len(s.customers))
	copy(out, s.customers)
	return out
}

// Articles возвращает копию списка артикулов в порядке каталога.
func (s *Store) Articles() []domain.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Article, len(s.articles))
	copy(out, s.articles)
	return out
}

// Customer возвращает клиента по позиции.
func (s *Store) Customer(index int) (domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return domain.Customer{}, domain.ErrCatalogUnavailable
	}
	if index < 0 || index >= len(s.customers) {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return s.customers[index], nil
}

// ArticleByNumber ищет первый артикул с таким номером.
func (s *Store) ArticleByNumber(number string) (domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return domain.Article{}, domain.ErrCatalogUnavailable
	}
	for _, article := range s.articles {
		if article.Number == number {
			return article, nil
		}
	}
	return domain.Article{}, domain.ErrArticleNotFound
}

// AppendCustomer дописывает клиента из формы и возвращает его позицию.
func (s *Store) AppendCustomer(customer domain.Customer) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return -1, domain.ErrCatalogUnavailable
	}
	s.customers = append(s.customers, customer)
	return len(s.customers) - 1, nil
}

// Size возвращает размеры списков.
func (s *Store) Size() (customers, articles int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers), len(s.articles)
}
