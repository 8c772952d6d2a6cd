// Package config defines the configuration structures for CaratCompare.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitRPS    float64       `mapstructure:"rate_limit_rps"` // per client on /api/v1; 0 disables
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// SiteConfig holds the public identity of the site.
type SiteConfig struct {
	Name         string   `mapstructure:"name"`
	BaseURL      string   `mapstructure:"base_url"`
	AffiliateURL string   `mapstructure:"affiliate_url"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// CatalogConfig points at an optional replacement dimension table.
// An empty DimensionsPath selects the embedded table.
type CatalogConfig struct {
	DimensionsPath string `mapstructure:"dimensions_path"`
}

// RedisConfig holds Redis connection parameters for the page cache and the
// prerender lock.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PageTTL      time.Duration `mapstructure:"page_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds object storage parameters for published pages.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
}

// KafkaConfig holds broker and topic settings for prerender requests and
// publish events.
type KafkaConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Brokers        []string `mapstructure:"brokers"`
	GroupID        string   `mapstructure:"group_id"`
	RequestTopic   string   `mapstructure:"request_topic"`
	PublishedTopic string   `mapstructure:"published_topic"`

	// Acks is none, one or all. Compression is empty, gzip, snappy, lz4 or
	// zstd.
	Acks        string `mapstructure:"acks"`
	Compression string `mapstructure:"compression"`

	// MaxRetries bounds redelivery of a failed prerender request before it
	// goes to DeadLetterTopic. Zero selects the default.
	MaxRetries      int    `mapstructure:"max_retries"`
	DeadLetterTopic string `mapstructure:"dead_letter_topic"`
}

// PrerenderConfig controls the static generation pipeline.
type PrerenderConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	OutputDir   string        `mapstructure:"output_dir"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
	WarmCache   bool          `mapstructure:"warm_cache"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Site      SiteConfig        `mapstructure:"site"`
	Catalog   CatalogConfig     `mapstructure:"catalog"`
	Redis     RedisConfig       `mapstructure:"redis"`
	MinIO     MinIOConfig       `mapstructure:"minio"`
	Kafka     KafkaConfig       `mapstructure:"kafka"`
	Prerender PrerenderConfig   `mapstructure:"prerender"`
	Log       logging.LogConfig `mapstructure:"log"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
}

// Validate performs semantic validation of the fully-populated Config and
// returns the first error encountered.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("config: server.rate_limit_rps must be >= 0, got %v", c.Server.RateLimitRPS)
	}

	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: site.base_url %q must be an absolute URL", c.Site.BaseURL)
	}
	if c.Site.AffiliateURL != "" {
		if _, err := url.ParseRequestURI(c.Site.AffiliateURL); err != nil {
			return fmt.Errorf("config: site.affiliate_url %q is invalid: %w", c.Site.AffiliateURL, err)
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when minio is enabled")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required when minio is enabled")
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required")
		}
		switch c.Kafka.Acks {
		case "none", "one", "all":
		default:
			return fmt.Errorf("config: kafka.acks %q is invalid; expected none|one|all", c.Kafka.Acks)
		}
		switch c.Kafka.Compression {
		case "", "gzip", "snappy", "lz4", "zstd":
		default:
			return fmt.Errorf("config: kafka.compression %q is invalid; expected gzip|snappy|lz4|zstd", c.Kafka.Compression)
		}
		if c.Kafka.MaxRetries < 0 {
			return fmt.Errorf("config: kafka.max_retries must be >= 0, got %d", c.Kafka.MaxRetries)
		}
	}

	if c.Prerender.Concurrency < 1 {
		return fmt.Errorf("config: prerender.concurrency must be >= 1, got %d", c.Prerender.Concurrency)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}
	return nil
}
