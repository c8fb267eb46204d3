package cache

import (
	"context"
	"strings"

	errs "github.com/matzehuels/cpanmap/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend    string // file (default), redis, mongo or none
	Dir        string // file: cache directory, DefaultDir() when empty
	URL        string // redis: redis:// URL; mongo: mongodb:// URI
	Database   string // mongo: database name
	Collection string // mongo: collection name
	Prefix     string // redis: key prefix
}

// Clearer is implemented by backends that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Open returns the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidCacheConfig, err, "resolve cache directory")
			}
			dir = d
		}
		c, err := NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		if cfg.URL == "" {
			return nil, errs.New(errs.ErrCodeInvalidCacheConfig, "redis cache needs a url")
		}
		prefix := cfg.Prefix
		if prefix == "" {
			prefix = "cpanmap:"
		}
		c, err := NewRedisCache(ctx, cfg.URL, prefix)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		if cfg.URL == "" {
			return nil, errs.New(errs.ErrCodeInvalidCacheConfig, "mongo cache needs a uri")
		}
		db, coll := cfg.Database, cfg.Collection
		if db == "" {
			db = "cpanmap"
		}
		if coll == "" {
			coll = "http_cache"
		}
		c, err := NewMongoCache(ctx, cfg.URL, db, coll)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	}
	return nil, errs.New(errs.ErrCodeInvalidCacheConfig, "unknown cache backend %q", cfg.Backend)
}
