package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/messeorder/internal/app"
	"github.com/vladislavdragonenkov/messeorder/internal/version"
)

const (
	envLogLevel                 = "MESSEORDER_LOG_LEVEL"
	envHTTPAddr                 = "MESSEORDER_HTTP_ADDR"
	envGRPCAddr                 = "MESSEORDER_GRPC_ADDR"
	envMetricsAddr              = "MESSEORDER_METRICS_ADDR"
	envCatalogDir               = "MESSEORDER_CATALOG_DIR"
	envCatalogURL               = "MESSEORDER_CATALOG_URL"
	envSessionIdleTTL           = "MESSEORDER_SESSION_IDLE_TTL"
	envSessionSweepInterval     = "MESSEORDER_SESSION_SWEEP_INTERVAL"
	envArchiveDriver            = "MESSEORDER_ARCHIVE_DRIVER"
	envPostgresDSN              = "MESSEORDER_POSTGRES_DSN"
	envPostgresAutoMigrate      = "MESSEORDER_POSTGRES_AUTO_MIGRATE"
	envKafkaBrokers             = "MESSEORDER_KAFKA_BROKERS"
	envOutboxPollInterval       = "MESSEORDER_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize          = "MESSEORDER_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts        = "MESSEORDER_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay         = "MESSEORDER_OUTBOX_RETRY_DELAY"
	defaultLogLevel             = log.InfoLevel
	positiveValueRequirement    = "must be > 0"
	nonNegativeValueRequirement = "must be >= 0"
)

type envLookup func(string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) []string {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(defaultLogLevel)

	raw, ok := lookupTrimmed(lookup, envLogLevel)
	if !ok {
		return nil
	}
	level, err := log.ParseLevel(raw)
	if err != nil {
		return []string{fmt.Sprintf("%s=%q: %v", envLogLevel, raw, err)}
	}
	log.SetLevel(level)
	return nil
}

// readConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не валят запуск: остаётся значение по умолчанию, а в ответ
// добавляется предупреждение.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string
	warn := func(key, raw string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q: %v", key, raw, err))
	}

	for key, target := range map[string]*string{
		envHTTPAddr:     &cfg.HTTPAddr,
		envGRPCAddr:     &cfg.GRPCAddr,
		envMetricsAddr:  &cfg.MetricsAddr,
		envCatalogDir:   &cfg.CatalogDir,
		envCatalogURL:   &cfg.CatalogURL,
		envPostgresDSN:  &cfg.PostgresDSN,
		envKafkaBrokers: &cfg.KafkaBrokers,
	} {
		if v, ok := lookupTrimmed(lookup, key); ok {
			*target = v
		}
	}

	if v, ok := lookupTrimmed(lookup, envArchiveDriver); ok {
		switch driver := strings.ToLower(v); driver {
		case app.ArchiveDriverMemory, app.ArchiveDriverPostgres:
			cfg.ArchiveDriver = driver
		default:
			warn(envArchiveDriver, v, errors.New("expected memory or postgres"))
		}
	}

	if v, ok := lookupTrimmed(lookup, envPostgresAutoMigrate); ok {
		if parsed, err := parseBool(v); err != nil {
			warn(envPostgresAutoMigrate, v, err)
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}

	positive := func(d time.Duration) bool { return d > 0 }
	nonNegative := func(d time.Duration) bool { return d >= 0 }
	durations := []struct {
		key      string
		target   *time.Duration
		validate func(time.Duration) bool
		msg      string
	}{
		{envSessionIdleTTL, &cfg.SessionIdleTTL, positive, positiveValueRequirement},
		{envSessionSweepInterval, &cfg.SessionSweepInterval, positive, positiveValueRequirement},
		{envOutboxPollInterval, &cfg.OutboxPollInterval, positive, positiveValueRequirement},
		{envOutboxRetryDelay, &cfg.OutboxRetryDelay, nonNegative, nonNegativeValueRequirement},
	}
	for _, d := range durations {
		v, ok := lookup(d.key)
		if !ok {
			continue
		}
		parsed, err := parseDuration(v, d.validate, d.msg)
		if err != nil {
			warn(d.key, v, err)
			continue
		}
		*d.target = parsed
	}

	ints := []struct {
		key    string
		target *int
	}{
		{envOutboxBatchSize, &cfg.OutboxBatchSize},
		{envOutboxMaxAttempts, &cfg.OutboxMaxAttempts},
	}
	for _, i := range ints {
		v, ok := lookup(i.key)
		if !ok {
			continue
		}
		parsed, err := parseInt(v, func(n int) bool { return n > 0 }, positiveValueRequirement)
		if err != nil {
			warn(i.key, v, err)
			continue
		}
		*i.target = parsed
	}

	return cfg, warnings
}

func lookupTrimmed(lookup envLookup, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value")
	}
}

func parseInt(raw string, validate func(int) bool, requirement string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value: %w", err)
	}
	if !validate(value) {
		return 0, errors.New(requirement)
	}
	return value, nil
}

func parseDuration(raw string, validate func(time.Duration) bool, requirement string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %w", err)
	}
	if !validate(value) {
		return 0, errors.New(requirement)
	}
	return value, nil
}

func main() {
	warnings := setupLogger(os.LookupEnv)
	cfg, cfgWarnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range append(warnings, cfgWarnings...) {
		log.Warnf("ignored environment value: %s", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"version":        version.String(),
		"http_addr":      cfg.HTTPAddr,
		"grpc_addr":      cfg.GRPCAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"archive_driver": cfg.ArchiveDriver,
		"kafka_enabled":  cfg.KafkaBrokers != "",
	}).Info("запускаем messeorder")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("messeorder остановлен")
}
