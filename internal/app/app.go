package app

import (
	"context"
	"errors"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/alejoevilches/laabuelachela/internal/cache"
	"github.com/alejoevilches/laabuelachela/internal/clock"
	healthcheck "github.com/alejoevilches/laabuelachela/internal/health"
	"github.com/alejoevilches/laabuelachela/internal/layout"
	"github.com/alejoevilches/laabuelachela/internal/messaging/kafka"
	"github.com/alejoevilches/laabuelachela/internal/metrics"
	grpcsvc "github.com/alejoevilches/laabuelachela/internal/service/grpc"
	"github.com/alejoevilches/laabuelachela/internal/service/kitchen"
	"github.com/alejoevilches/laabuelachela/internal/service/printing"
	"github.com/alejoevilches/laabuelachela/internal/version"
)

// Run поднимает kitchen-service и блокируется до отмены ctx или падения gRPC-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	logger.WithField("build", version.String()).Info("starting kitchen-service")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(producer, logger)

	svc, orderCache := buildService(cfg, deps, producer)

	if cfg.SeedCatalog {
		if _, err := svc.EnsureCatalog(ctx); err != nil {
			logger.WithError(err).Warn("failed to seed default catalog")
		}
	}
	if err := orderCache.FetchOrders(ctx, false); err != nil {
		logger.WithError(err).Warn("initial orders fetch failed, serving empty partition")
	}

	printHandler, err := printing.NewHandler(svc, cfg.DocumentCacheSize, log.WithField("component", "printing"))
	if err != nil {
		return err
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	for name, checker := range deps.checkers {
		healthHandler.RegisterChecker(name, checker)
	}
	healthHandler.RegisterChecker("order-cache", cacheChecker{cache: orderCache})

	httpSrv := startHTTPServer(ctx, cfg.HTTPAddr, logger, newHTTPRouter(healthHandler, printHandler))

	kitchenService := grpcsvc.NewKitchenService(svc, logger.WithField("layer", "grpc"))
	grpcServer, healthServer := newGRPCServer(kitchenService, logger)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		shutdownHTTP(httpSrv, logger)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("gRPC сервер слушает %s", cfg.GRPCAddr)
		errCh <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем gRPC сервер")
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		stopGRPC(grpcServer, shutdownTimeout(cfg), logger)
		shutdownHTTP(httpSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(httpSrv, logger)
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

// buildService связывает хранилище, кэш, часы и публикацию событий.
func buildService(cfg Config, deps *runtimeDependencies, producer *kafka.Producer) (*kitchen.Service, *cache.OrderCache) {
	sysClock := clock.NewSystem(cfg.Timezone)

	orderCache := cache.New(deps.orders,
		cache.WithClock(sysClock),
		cache.WithMetrics(metrics.NewCacheMetrics()),
		cache.WithFetchTimeout(cfg.FetchTimeout),
	)

	options := []kitchen.Option{
		kitchen.WithClock(sysClock),
		kitchen.WithLogger(log.WithField("component", "kitchen-service")),
	}
	if cfg.Layout != (layout.Options{}) {
		options = append(options, kitchen.WithLayoutOptions(cfg.Layout))
	}
	if producer != nil {
		topic := cfg.KafkaTopic
		if topic == "" {
			topic = kafka.TopicOrderEvents
		}
		options = append(options, kitchen.WithPublisher(kafka.NewEventPublisher(producer, topic)))
	}

	return kitchen.NewService(deps.orders, deps.products, orderCache, options...), orderCache
}

func stopGRPC(server *grpc.Server, timeout time.Duration, logger *log.Entry) {
	stoppedCh := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stoppedCh)
	}()
	select {
	case <-stoppedCh:
	case <-time.After(timeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		server.Stop()
	}
}

func shutdownTimeout(cfg Config) time.Duration {
	if cfg.ShutdownTimeout > 0 {
		return cfg.ShutdownTimeout
	}
	return 5 * time.Second
}
