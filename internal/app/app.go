package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/messeorder/internal/health"
	"github.com/vladislavdragonenkov/messeorder/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/messeorder/internal/metrics"
	"github.com/vladislavdragonenkov/messeorder/internal/service/outbox"
	"github.com/vladislavdragonenkov/messeorder/internal/service/submission"
	"github.com/vladislavdragonenkov/messeorder/internal/session"
	"github.com/vladislavdragonenkov/messeorder/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/messeorder/internal/version"
)

// outboxBacklogMaxAge - после этого возраста старейшего события outbox считается застрявшим.
const outboxBacklogMaxAge = 5 * time.Minute

// Run поднимает сервис и блокируется до отмены ctx или падения сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	if err := cfg.Validate(); err != nil {
		return err
	}

	deskMetrics := metrics.NewDeskMetrics()

	store := loadCatalog(ctx, cfg, logger)
	deskMetrics.SetCatalogSize(store.Size())

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.close(); err != nil {
			logger.WithError(err).Warn("failed to close archive")
		}
	}()

	runCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	var workers sync.WaitGroup

	// Ошибка Kafka не фатальна: события копятся в outbox.
	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	if producer != nil {
		worker := outbox.NewWorker(
			deps.outbox,
			kafka.NewOutboxPublisher(producer, kafka.TopicOrders),
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		workers.Add(1)
		go func() {
			defer workers.Done()
			worker.Run(runCtx)
		}()
	} else {
		logger.Info("kafka is not configured, order events stay in outbox")
	}

	submitter := submission.NewService(deps.archive, submission.WithLogger(logger.WithField("component", "submission")))
	registry := session.NewRegistry(session.Deps{
		Catalog:   store,
		Submitter: submitter,
		Metrics:   deskMetrics,
		Logger:    logger.WithField("component", "session"),
	})

	sweeper := session.NewSweeper(registry,
		session.WithLogger(logger.WithField("component", "session-sweeper")),
		session.WithIdleTTL(cfg.SessionIdleTTL),
		session.WithInterval(cfg.SessionSweepInterval),
	)
	workers.Add(1)
	go func() {
		defer workers.Done()
		sweeper.Run(runCtx)
	}()

	healthHandler := newHealthHandler(store.Err, deps, time.Now)
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	errCh := make(chan error, 2)
	api := httpapi.New(registry,
		httpapi.WithLogger(logger.WithField("component", "http-api")),
		httpapi.WithArchive(deps.archive),
	)
	apiSrv, err := serveHTTP(cfg.HTTPAddr, api.Handler(), logger, errCh)
	if err != nil {
		shutdownHTTP(metricsSrv, logger)
		stopWorkers()
		workers.Wait()
		closeKafka(producer, logger)
		return fmt.Errorf("listen http api: %w", err)
	}

	grpcServer, healthServer := newGRPCServer(logger.WithField("layer", "grpc"))
	setServing(healthServer, store.Ready())

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		stopWorkers()
		workers.Wait()
		closeKafka(producer, logger)
		return fmt.Errorf("listen grpc: %w", err)
	}
	go func() {
		logger.Infof("gRPC сервер слушает %s", lis.Addr())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	var result error
	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		result = ctx.Err()
	case err := <-errCh:
		if !errors.Is(err, grpc.ErrServerStopped) {
			logger.WithError(err).Error("server failed")
			result = err
		}
	}

	shutdownHTTP(apiSrv, logger)
	stopGRPC(grpcServer, healthServer, logger)
	shutdownHTTP(metricsSrv, logger)

	stopWorkers()
	workers.Wait()
	closeKafka(producer, logger)

	return result
}

// newHealthHandler собирает проверки готовности: каталог и архив обязательны,
// backlog outbox только понижает статус до degraded.
func newHealthHandler(catalogErr func() error, deps *runtimeDependencies, now func() time.Time) *healthcheck.Handler {
	h := healthcheck.NewHandler(version.GetVersion())
	h.RegisterChecker("catalog", healthcheck.NewChecker("catalog", func(context.Context) error {
		return catalogErr()
	}))
	h.RegisterChecker("archive", healthcheck.NewChecker("archive", deps.ping))
	h.RegisterChecker("outbox", healthcheck.NewOptionalChecker("outbox", outboxBacklogCheck(deps.outbox, now)))
	return h
}

// outboxBacklogCheck сообщает о событиях, которые слишком долго ждут публикации.
func outboxBacklogCheck(repo domain.OutboxRepository, now func() time.Time) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		stats, err := repo.Stats(ctx)
		if err != nil {
			return err
		}
		if stats.OldestPendingAt.IsZero() {
			return nil
		}
		if age := now().Sub(stats.OldestPendingAt); age > outboxBacklogMaxAge {
			return fmt.Errorf("%d pending events, oldest is %s old", stats.PendingCount, age.Round(time.Second))
		}
		return nil
	}
}
