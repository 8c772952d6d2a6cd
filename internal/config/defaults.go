package config

import "time"

const (
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 10 * time.Second
	DefaultServerWriteTimeout    = 15 * time.Second
	DefaultServerShutdownTimeout = 15 * time.Second
	DefaultServerRateLimitBurst  = 40

	DefaultSiteName    = "Carat Compare"
	DefaultSiteBaseURL = "https://www.caratcompare.co"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisPageTTL   = 24 * time.Hour
	DefaultRedisKeyPrefix = "caratcompare:"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "caratcompare-site"
	DefaultMinIORegion   = "us-east-1"

	DefaultKafkaBroker         = "localhost:9092"
	DefaultKafkaGroupID        = "caratcompare-worker"
	DefaultKafkaRequestTopic   = "caratcompare.prerender.requested"
	DefaultKafkaPublishedTopic = "caratcompare.site.published"
	DefaultKafkaDeadLetter     = "caratcompare.dead_letter"
	DefaultKafkaAcks           = "one"
	DefaultKafkaMaxRetries     = 3

	DefaultPrerenderConcurrency = 8
	DefaultPrerenderOutputDir   = "./out"
	DefaultPrerenderLockTTL     = 5 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "caratcompare"
	DefaultMetricsPath      = "/metrics"
)

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg with its default.
// Explicitly configured values are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}

	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = DefaultServerRateLimitBurst
	}

	if cfg.Site.Name == "" {
		cfg.Site.Name = DefaultSiteName
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = DefaultSiteBaseURL
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.PageTTL == 0 {
		cfg.Redis.PageTTL = DefaultRedisPageTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = DefaultMinIORegion
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.RequestTopic == "" {
		cfg.Kafka.RequestTopic = DefaultKafkaRequestTopic
	}
	if cfg.Kafka.PublishedTopic == "" {
		cfg.Kafka.PublishedTopic = DefaultKafkaPublishedTopic
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultKafkaDeadLetter
	}
	if cfg.Kafka.Acks == "" {
		cfg.Kafka.Acks = DefaultKafkaAcks
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = DefaultKafkaMaxRetries
	}

	if cfg.Prerender.Concurrency == 0 {
		cfg.Prerender.Concurrency = DefaultPrerenderConcurrency
	}
	if cfg.Prerender.OutputDir == "" {
		cfg.Prerender.OutputDir = DefaultPrerenderOutputDir
	}
	if cfg.Prerender.LockTTL == 0 {
		cfg.Prerender.LockTTL = DefaultPrerenderLockTTL
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}
