package app

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vladislavdragonenkov/messeorder/internal/catalog"
)

const catalogFetchTimeout = 10 * time.Second

// catalogSource выбирает источник каталога: URL важнее директории.
func catalogSource(cfg Config) (catalog.Source, error) {
	if cfg.CatalogURL != "" {
		client := &http.Client{
			Timeout:   catalogFetchTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
		return catalog.NewHTTPSource(cfg.CatalogURL, client)
	}
	return catalog.NewDirSource(cfg.CatalogDir), nil
}

// loadCatalog загружает каталог один раз при старте. Ошибка не останавливает
// сервис: сессии показывают постоянное сообщение, health-check - unhealthy.
func loadCatalog(ctx context.Context, cfg Config, logger *log.Entry) *catalog.Store {
	store := catalog.NewStore(logger.WithField("component", "catalog"))

	src, err := catalogSource(cfg)
	if err != nil {
		logger.WithError(err).Error("catalog source is invalid")
		return store
	}
	// Ошибку уже залогировал Store.
	_ = store.Load(ctx, src)
	return store
}
