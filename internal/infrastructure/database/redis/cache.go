package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeCacheError, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// Cache holds JSON encoded values under a key prefix.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	// GetOrSet reads key into dest, calling loader once per concurrent miss.
	// When Redis itself fails the loader result is returned uncached.
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	// MSet writes items in a single pipeline.
	MSet(ctx context.Context, items map[string]interface{}, ttl time.Duration) error
	// Purge deletes every key starting with prefix.
	Purge(ctx context.Context, prefix string) (int64, error)
}

type redisCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	jitter     float64
	group      singleflight.Group
}

type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

// WithJitter spreads expirations by up to fraction of the TTL either way so
// a warmed site does not expire in one instant. Zero disables it.
func WithJitter(fraction float64) CacheOption {
	return func(c *redisCache) { c.jitter = fraction }
}

// NewRedisCache returns a Cache backed by client.
func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	c := &redisCache{
		client:     client,
		logger:     log,
		prefix:     "caratcompare:",
		defaultTTL: 24 * time.Hour,
		jitter:     0.1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) ttl(ttl time.Duration) time.Duration {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if ttl <= 0 || c.jitter == 0 {
		return ttl
	}
	return ttl + time.Duration(float64(ttl)*c.jitter*(rand.Float64()*2-1))
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.prefix+key)
	switch {
	case stderrors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache read").WithDetail(key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed.WithCause(err).WithDetail(key)
	}
	return nil
}

func (c *redisCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err).WithDetail(key)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl(ttl)); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache write").WithDetail(key)
	}
	return nil
}

func (c *redisCache) MSet(ctx context.Context, items map[string]interface{}, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	encoded := make(map[string][]byte, len(items))
	for k, v := range items {
		data, err := json.Marshal(v)
		if err != nil {
			return ErrSerializationFailed.WithCause(err).WithDetail(k)
		}
		encoded[c.prefix+k] = data
	}
	err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, data := range encoded {
			pipe.Set(ctx, k, data, c.ttl(ttl))
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache batch write")
	}
	return nil
}

func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	// A corrupt entry is overwritten like a miss.
	cacheDown := err != ErrCacheMiss && !errors.IsCode(err, errors.ErrCodeSerialization)
	if cacheDown {
		c.logger.Warn("Cache read failed, loading directly", logging.String("key", key), logging.Err(err))
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil || cacheDown || v == nil {
			return v, loadErr
		}
		if setErr := c.set(ctx, key, v, ttl); setErr != nil {
			c.logger.Warn("Cache write failed", logging.String("key", key), logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return err
	}
	if val == nil {
		return ErrCacheMiss
	}

	// Shared results are copied into dest through JSON, the same path a hit
	// takes.
	data, err := json.Marshal(val)
	if err != nil {
		return ErrSerializationFailed.WithCause(err).WithDetail(key)
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Purge(ctx context.Context, prefix string) (int64, error) {
	n, err := c.client.DeleteMatching(ctx, c.prefix+prefix+"*")
	if err != nil {
		return n, errors.Wrap(err, errors.ErrCodeCacheError, "cache purge").WithDetail(prefix)
	}
	return n, nil
}
