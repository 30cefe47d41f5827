package app

import (
	"errors"
	"fmt"
	"time"
)

// Драйверы архива заказов.
const (
	ArchiveDriverMemory   = "memory"
	ArchiveDriverPostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	// Каталог: локальная директория или базовый URL (URL важнее).
	CatalogDir string
	CatalogURL string

	SessionIdleTTL       time.Duration
	SessionSweepInterval time.Duration

	ArchiveDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers - список через запятую; пустой отключает публикацию событий.
	KafkaBrokers string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
}

// DefaultConfig возвращает базовую конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:             ":8080",
		GRPCAddr:             ":50051",
		MetricsAddr:          ":9090",
		CatalogDir:           "data",
		SessionIdleTTL:       30 * time.Minute,
		SessionSweepInterval: time.Minute,
		ArchiveDriver:        ArchiveDriverMemory,
		PostgresAutoMigrate:  true,
		OutboxPollInterval:   time.Second,
		OutboxBatchSize:      100,
		OutboxMaxAttempts:    3,
		OutboxRetryDelay:     100 * time.Millisecond,
	}
}

var errUnsupportedArchiveDriver = errors.New("unsupported archive driver")

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.ArchiveDriver {
	case ArchiveDriverMemory:
	case ArchiveDriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres archive requires PostgresDSN")
		}
	default:
		return fmt.Errorf("%w: %q", errUnsupportedArchiveDriver, c.ArchiveDriver)
	}
	if c.CatalogDir == "" && c.CatalogURL == "" {
		return errors.New("catalog source is not configured")
	}
	if c.HTTPAddr == "" {
		return errors.New("http address is empty")
	}
	return nil
}
