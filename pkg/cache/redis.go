package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/selecttree/pkg/errors"
)

// DefaultRedisURL is used when RedisOptions.URL is empty.
const DefaultRedisURL = "redis://localhost:6379"

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// TLS configuration for secure connections.
	TLS *tls.Config

	// KeyPrefix is the prefix a ScopedKeyer puts in front of every key.
	// Clear only removes keys under it.
	KeyPrefix string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

func (o *RedisOptions) setDefaults() {
	if o.URL == "" {
		o.URL = DefaultRedisURL
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 5 * time.Second
	}
	if o.ReadTimeout == 0 {
		o.ReadTimeout = 3 * time.Second
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = 3 * time.Second
	}
}

// RedisCache stores entries as plain Redis strings with native expiry.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and pings it before returning.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	opts.setDefaults()
	if err := errs.ValidateURL(opts.URL, "redis", "rediss", "unix"); err != nil {
		return nil, err
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse Redis URL")
	}
	if opts.TLS != nil {
		redisOpts.TLSConfig = opts.TLS
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "connect to Redis")
	}

	return &RedisCache{client: client, prefix: opts.KeyPrefix}, nil
}

// Get returns the value stored under key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeNetwork, err, "redis get %s", key)
	}
	return data, true, nil
}

// Set stores data under key with the given ttl.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "redis set %s", key)
	}
	return nil
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "redis del %s", key)
	}
	return nil
}

// Clear deletes the rows and result entries under the key prefix. Other
// keys in the database are left alone.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	n := 0
	for _, kind := range []string{KindRows, KindResult} {
		iter := c.client.Scan(ctx, 0, c.prefix+kind+":*", 100).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				return n, errs.Wrap(errs.ErrCodeNetwork, err, "redis del %s", iter.Val())
			}
			n++
		}
		if err := iter.Err(); err != nil {
			return n, errs.Wrap(errs.ErrCodeNetwork, err, "redis scan")
		}
	}
	return n, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var (
	_ Cache   = (*RedisCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
