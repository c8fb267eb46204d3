// Package cache stores registry responses between runs.
//
// A [Cache] is a byte-oriented key/value store with per-entry TTL. Four
// backends are provided:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// [Open] selects a backend from a [Config]. Keys are built by a [Keyer] so
// that several registry mirrors can share one store without collisions.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for serialized registry responses.
//
// Get reports a miss with ok=false and a nil error; errors are reserved for
// backend failures. A ttl of zero or less stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache stores nothing. Every Get is a miss.
type NullCache struct{}

func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
