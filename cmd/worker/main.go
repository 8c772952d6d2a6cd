// Command worker consumes prerender requests and publishes the rendered
// site to object storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/CaratCompare/internal/application/prerender"
	"github.com/turtacn/CaratCompare/internal/bootstrap"
	"github.com/turtacn/CaratCompare/internal/config"
	"github.com/turtacn/CaratCompare/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/CaratCompare/internal/interfaces/http"
	"github.com/turtacn/CaratCompare/internal/interfaces/http/handlers"
)

var version = "dev"

const defaultHealthPort = 8081

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for /healthz, /readyz and /metrics")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.Kafka.Enabled {
		logger.Fatal("kafka.enabled must be true for the worker")
	}

	infra, err := bootstrap.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", logging.Err(err))
	}
	infra.Connect()
	defer infra.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureTopics(ctx, cfg, logger); err != nil {
		logger.Warn("Topic setup failed, relying on broker auto-creation", logging.Err(err))
	}

	consumer, err := infra.Consumer()
	if err != nil {
		logger.Fatal("Failed to create Kafka consumer", logging.Err(err))
	}

	sink, err := infra.PublishSink()
	if err != nil {
		logger.Warn("Object storage unavailable, publishing to the output directory",
			logging.String("dir", cfg.Prerender.OutputDir))
		sink = prerender.DirSink{Root: cfg.Prerender.OutputDir}
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", *healthPort))
	if err != nil {
		logger.Fatal("Failed to listen", logging.Int("port", *healthPort), logging.Err(err))
	}

	w := &worker{
		infra:    infra,
		pipeline: infra.Pipeline(),
		consumer: consumer,
		sink:     sink,
		health:   ln,
	}
	if err := w.run(ctx); err != nil {
		logger.Error("Worker exited", logging.Err(err))
		os.Exit(1)
	}
}

func ensureTopics(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers[0], logger)
	if err != nil {
		return err
	}
	defer tm.Close()
	return tm.EnsureTopics(ctx, kafka.DefaultTopics(cfg.Kafka.RequestTopic, cfg.Kafka.PublishedTopic))
}

type worker struct {
	infra    *bootstrap.Infra
	pipeline *prerender.Pipeline
	consumer *kafka.Consumer
	sink     prerender.Sink
	health   net.Listener
}

// run consumes prerender requests and serves the probes until ctx is done.
func (w *worker) run(ctx context.Context) error {
	logger := w.infra.Logger
	gin.SetMode(gin.ReleaseMode)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version, w.infra.Metrics, w.infra.HealthCheckers()...),
		Logger:        logger.Named("health"),
		Metrics:       w.infra.Metrics,
		Collector:     w.infra.Collector,
		MetricsPath:   w.infra.Config.Metrics.Path,
	})
	srv := httpserver.NewServer(w.infra.Config.Server, router, logger.Named("health"))

	topic := w.infra.Config.Kafka.RequestTopic
	w.consumer.Subscribe(topic, w.pipeline.Trigger(w.sink))
	if err := w.consumer.Start(ctx); err != nil {
		return err
	}
	logger.Info("Carat Compare worker started",
		logging.String("version", version),
		logging.String("topic", topic),
		logging.String("health_addr", w.health.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(w.health) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Stopping worker")
		if err := w.consumer.Close(); err != nil {
			logger.Warn("Consumer close failed", logging.Err(err))
		}
		return srv.Stop(context.Background())
	})
	return g.Wait()
}
