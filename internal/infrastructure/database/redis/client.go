// Package redis provides the Redis client, the rendered page cache and the
// distributed lock that serialises site publishing.
package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/CaratCompare/internal/config"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

var (
	ErrClientClosed     = errors.New(errors.ErrCodeCacheError, "redis client is closed")
	ErrConnectionFailed = errors.New(errors.ErrCodeServiceUnavailable, "redis connection failed")
)

const (
	pingTimeout = 5 * time.Second
	scanCount   = 100
)

// Client is the narrow set of Redis operations the site needs. Every call
// fails with ErrClientClosed after Close.
type Client struct {
	rdb    redis.UniversalClient
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewClient connects to the server described by cfg and pings it.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	client := NewClientFrom(rdb, log)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, ErrConnectionFailed.WithCause(err).WithDetail(cfg.Addr)
	}

	log.Info("Redis client connected", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))
	return client, nil
}

// NewClientFrom wraps an existing client without pinging it.
func NewClientFrom(rdb redis.UniversalClient, log logging.Logger) *Client {
	return &Client{rdb: rdb, logger: log}
}

func (c *Client) guard() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.guard(); err != nil {
		return err
	}
	return c.rdb.Ping(ctx).Err()
}

// Get returns the raw value of key. A missing key yields redis.Nil.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if err := c.guard(); err != nil {
		return nil, err
	}
	return c.rdb.Get(ctx, key).Bytes()
}

func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.guard(); err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// SetNX sets key only when it does not exist and reports whether it did.
func (c *Client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := c.guard(); err != nil {
		return false, err
	}
	return c.rdb.SetNX(ctx, key, value, ttl).Result()
}

// Pipelined runs fn against a pipeline and executes it in one round trip.
func (c *Client) Pipelined(ctx context.Context, fn func(redis.Pipeliner) error) error {
	if err := c.guard(); err != nil {
		return err
	}
	_, err := c.rdb.Pipelined(ctx, fn)
	return err
}

// RunScript evaluates script and returns its integer reply.
func (c *Client) RunScript(ctx context.Context, script *redis.Script, keys []string, args ...interface{}) (int64, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}
	return script.Run(ctx, c.rdb, keys, args...).Int64()
}

// DeleteMatching removes every key matching the glob pattern, scanning in
// batches, and returns how many were removed.
func (c *Client) DeleteMatching(ctx context.Context, pattern string) (int64, error) {
	if err := c.guard(); err != nil {
		return 0, err
	}
	var (
		deleted int64
		cursor  uint64
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		if cursor = next; cursor == 0 {
			return deleted, nil
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("Failed to close Redis client", logging.Err(err))
		return err
	}
	c.logger.Info("Closed Redis client")
	return nil
}
