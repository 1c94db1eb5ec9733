package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lookatitude/beluga-ai/cache"
)

func init() {
	cache.Register("redis", func(cfg cache.Config) (cache.Cache, error) {
		addr, _ := cfg.Options["addr"].(string)
		if addr == "" {
			addr = "localhost:6379"
		}
		password, _ := cfg.Options["password"].(string)
		db, _ := cfg.Options["db"].(int)

		client := goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})
		return New(client, cfg.TTL), nil
	})
}

// Cache is a Redis-backed cache.Cache. Values are JSON-marshaled before
// being written, and unmarshaled back into an any on read, so callers that
// need a concrete type (such as the embedding caching middleware's
// []float32) must type-assert against the decoded shape, not the original
// value's Go type.
type Cache struct {
	client     *goredis.Client
	defaultTTL time.Duration
}

// New creates a Cache over an existing Redis client. defaultTTL applies to
// any Set call with a zero ttl; a negative ttl on either New or Set means no
// expiration.
func New(client *goredis.Client, defaultTTL time.Duration) *Cache {
	return &Cache{client: client, defaultTTL: defaultTTL}
}

// Get retrieves and JSON-decodes a value by key. A missing key returns
// (nil, false, nil), matching cache.Cache's contract.
func (c *Cache) Get(ctx context.Context, key string) (any, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache/redis: get %q: %w", key, err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, false, fmt.Errorf("cache/redis: decode %q: %w", key, err)
	}
	return value, true, nil
}

// Set JSON-encodes value and stores it under key with the given ttl. A zero
// ttl uses the cache's default; a negative ttl means no expiration.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache/redis: encode %q: %w", key, err)
	}
	expiration := ttl
	if expiration == 0 {
		expiration = c.defaultTTL
	}
	if expiration < 0 {
		expiration = 0
	}
	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return fmt.Errorf("cache/redis: set %q: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a non-existent key is a no-op.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache/redis: delete %q: %w", key, err)
	}
	return nil
}

// Clear flushes the database the client is connected to. It is intended for
// tests and local development against a dedicated Redis instance, not for a
// shared production database.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("cache/redis: clear: %w", err)
	}
	return nil
}
