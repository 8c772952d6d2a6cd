// Package bootstrap assembles the site and its optional backends from
// configuration for the server, the worker and the CLI.
package bootstrap

import (
	"context"

	"github.com/turtacn/CaratCompare/internal/application/content"
	"github.com/turtacn/CaratCompare/internal/application/prerender"
	"github.com/turtacn/CaratCompare/internal/config"
	"github.com/turtacn/CaratCompare/internal/domain/diamond"
	"github.com/turtacn/CaratCompare/internal/infrastructure/database/redis"
	"github.com/turtacn/CaratCompare/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CaratCompare/internal/infrastructure/storage/minio"
	"github.com/turtacn/CaratCompare/internal/interfaces/http/handlers"
	"github.com/turtacn/CaratCompare/pkg/errors"
	"github.com/turtacn/CaratCompare/web"
)

// Infra holds everything a process needs to serve or publish the site.
// The backend fields are nil when disabled or unreachable.
type Infra struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics
	Pages     *content.Pages
	Renderer  *web.Renderer

	Redis    *redis.Client
	Cache    redis.Cache
	Locks    redis.LockFactory
	MinIO    *minio.MinIOClient
	Store    minio.PageStore
	Producer *kafka.Producer
}

// New builds the in-process parts: metrics, the dimension table, page models
// and templates. It does not contact any backend.
func New(cfg *config.Config, log logging.Logger) (*Infra, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	infra := &Infra{Config: cfg, Logger: log, Metrics: prometheus.NewNopAppMetrics()}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, log)
		if err != nil {
			return nil, err
		}
		infra.Collector = collector
		infra.Metrics = prometheus.NewAppMetrics(collector)
	}

	table, err := diamond.LoadTable(cfg.Catalog.DimensionsPath)
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.DimensionsPath != "" {
		log.Info("Dimension table loaded", logging.String("path", cfg.Catalog.DimensionsPath), logging.Int("rows", table.Len()))
	}
	infra.Pages = content.NewPages(Site(cfg), table)

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}
	infra.Renderer = renderer
	return infra, nil
}

// Site maps the site section of cfg.
func Site(cfg *config.Config) content.Site {
	return content.Site{
		Name:         cfg.Site.Name,
		BaseURL:      cfg.Site.BaseURL,
		AffiliateURL: cfg.Site.AffiliateURL,
	}
}

// Connect opens every enabled backend. A backend that cannot be reached is
// logged and left nil so the process runs without it.
func (i *Infra) Connect() {
	cfg := i.Config

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg.Redis, i.Logger)
		if err != nil {
			i.Logger.Warn("Redis unavailable, page cache and publish lock disabled", logging.Err(err))
		} else {
			i.Redis = client
			i.Cache = redis.NewRedisCache(client, i.Logger, redis.WithPrefix(cfg.Redis.KeyPrefix), redis.WithDefaultTTL(cfg.Redis.PageTTL))
			i.Locks = redis.NewLockFactory(client, cfg.Redis.KeyPrefix, i.Logger)
		}
	}

	if cfg.MinIO.Enabled {
		client, err := minio.NewMinIOClient(cfg.MinIO, i.Logger)
		if err != nil {
			i.Logger.Warn("MinIO unavailable, publishing to object storage disabled", logging.Err(err))
		} else {
			i.MinIO = client
			i.Store = minio.NewPageStore(client, i.Logger)
		}
	}

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:          cfg.Kafka.Brokers,
			Acks:             cfg.Kafka.Acks,
			CompressionCodec: cfg.Kafka.Compression,
		}, i.Logger)
		if err != nil {
			i.Logger.Warn("Kafka unavailable, publish events disabled", logging.Err(err))
		} else {
			i.Producer = producer
		}
	}
}

// Pipeline returns a prerender pipeline using every connected backend.
// Extra options are applied last.
func (i *Infra) Pipeline(opts ...prerender.Option) *prerender.Pipeline {
	cfg := i.Config
	base := []prerender.Option{
		prerender.WithConcurrency(cfg.Prerender.Concurrency),
		prerender.WithMetrics(i.Metrics),
	}
	if i.Cache != nil && cfg.Prerender.WarmCache {
		base = append(base, prerender.WithCache(i.Cache, cfg.Redis.PageTTL))
	}
	if i.Locks != nil {
		base = append(base, prerender.WithLocks(i.Locks, cfg.Prerender.LockTTL))
	}
	if i.Producer != nil {
		base = append(base, prerender.WithPublisher(i.Producer, cfg.Kafka.PublishedTopic))
	}
	return prerender.New(i.Pages, i.Renderer, i.Logger.Named("prerender"), append(base, opts...)...)
}

// PublishSink returns the object store sink, or an error when MinIO is not
// connected.
func (i *Infra) PublishSink() (prerender.Sink, error) {
	if i.Store == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "object storage is not configured")
	}
	return prerender.StoreSink{Store: i.Store}, nil
}

// Consumer returns a consumer group reading the prerender request topic.
// Messages that keep failing go to the dead letter topic.
func (i *Infra) Consumer() (*kafka.Consumer, error) {
	cfg := i.Config.Kafka
	return kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topics:  []string{cfg.RequestTopic},
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      cfg.MaxRetries,
			DeadLetterTopic: cfg.DeadLetterTopic,
		},
	}, i.Logger.Named("consumer"))
}

// HealthCheckers returns a readiness check for each connected backend.
func (i *Infra) HealthCheckers() []handlers.HealthChecker {
	var checks []handlers.HealthChecker
	if i.Redis != nil {
		checks = append(checks, handlers.CheckerFunc{ComponentName: "redis", Fn: i.Redis.Ping})
	}
	if i.MinIO != nil {
		checks = append(checks, handlers.CheckerFunc{ComponentName: "minio", Fn: func(ctx context.Context) error {
			_, err := i.MinIO.HealthCheck(ctx)
			return err
		}})
	}
	return checks
}

// Close releases every connected backend.
func (i *Infra) Close() {
	if i.Producer != nil {
		if err := i.Producer.Close(); err != nil {
			i.Logger.Warn("Kafka producer close failed", logging.Err(err))
		}
	}
	if i.MinIO != nil {
		_ = i.MinIO.Close()
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			i.Logger.Warn("Redis close failed", logging.Err(err))
		}
	}
}
