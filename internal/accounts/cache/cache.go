// Package cache is the read-through shadow of stored entities. Entries are
// never authoritative: every mutation deletes them and any decoding problem
// is treated as a miss.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when no usable entry exists.
var ErrMiss = errors.New("cache: miss")

// Cache stores serialized entities by kind and id.
type Cache interface {
	Set(ctx context.Context, kind string, id int64, value []byte, ttl time.Duration) error
	Get(ctx context.Context, kind string, id int64) ([]byte, error)
	Delete(ctx context.Context, kind string, id int64) error
	Ping(ctx context.Context) error
}

// DefaultPrefix namespaces keys when several services share a redis.
const DefaultPrefix = "memo"

type RedisCache struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache wraps an existing client. An empty prefix uses DefaultPrefix.
func NewRedisCache(rdb redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisCache{rdb: rdb, prefix: prefix}
}

// Connect parses a redis:// URL, connects and pings before returning.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// Key returns the redis key for kind and id, e.g. "memo:account:42".
func (c *RedisCache) Key(kind string, id int64) string {
	return c.prefix + ":" + kind + ":" + strconv.FormatInt(id, 10)
}

func (c *RedisCache) Set(ctx context.Context, kind string, id int64, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.Key(kind, id), value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, kind string, id int64) ([]byte, error) {
	b, err := c.rdb.Get(ctx, c.Key(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (c *RedisCache) Delete(ctx context.Context, kind string, id int64) error {
	return c.rdb.Del(ctx, c.Key(kind, id)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// NopCache never stores anything.
type NopCache struct{}

var _ Cache = NopCache{}

func (NopCache) Set(context.Context, string, int64, []byte, time.Duration) error { return nil }
func (NopCache) Get(context.Context, string, int64) ([]byte, error)              { return nil, ErrMiss }
func (NopCache) Delete(context.Context, string, int64) error                     { return nil }
func (NopCache) Ping(context.Context) error                                      { return nil }
