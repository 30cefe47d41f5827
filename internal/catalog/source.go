package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/messeorder/internal/version"
)

const (
	// CustomersResource - имя ресурса со списком клиентов.
	CustomersResource = "kunden.json"
	// ArticlesResource - имя ресурса со списком артикулов.
	ArticlesResource = "artikel.json"

	defaultFetchTimeout = 10 * time.Second
)

// Source отдаёт содержимое ресурса каталога по имени.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	String() string
}

// DirSource читает ресурсы из каталога на диске.
type DirSource struct {
	Dir string
}

// NewDirSource создаёт источник из локальной директории.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// Open открывает файл ресурса.
func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

func (s *DirSource) String() string {
	return "dir:" + s.Dir
}

// HTTPSource загружает ресурсы относительно базового URL.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPSource создаёт HTTP-источник. client == nil - клиент с таймаутом по умолчанию.
func NewHTTPSource(baseURL string, client *http.Client) (*HTTPSource, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported catalog url scheme %q", base.Scheme)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &HTTPSource{base: base, client: client}, nil
}

// Open выполняет GET; ответ не 2xx считается ошибкой.
func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("parse resource name %s: %w", name, err)
	}
	target := s.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: http status %d", target, resp.StatusCode)
	}
	return resp.Body, nil
}

func (s *HTTPSource) String() string {
	return "url:" + s.base.String()
}
