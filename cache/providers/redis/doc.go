// Package redis provides a Redis-backed implementation of cache.Cache. It
// registers itself under the name "redis" in the cache registry.
//
// Values are JSON-encoded before being stored under Redis' own TTL (SET ...
// EX), so expiry is enforced by the server rather than lazily on read like
// the inmemory provider.
//
// Usage:
//
//	import _ "github.com/lookatitude/beluga-ai/cache/providers/redis"
//
//	c, _ := cache.New("redis", cache.Config{
//	    TTL: 5 * time.Minute,
//	    Options: map[string]any{"addr": "localhost:6379"},
//	})
package redis
