// Package cache provides the byte caches behind remote repository lookups
// and API responses.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared entries for server deployments
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so every caller namespaces its entries the
// same way. [Observe] wraps a backend to report hits, misses and writes
// through the observability cache hooks.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/grapes/pkg/observability"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by [New].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Dir       string // file backend
	RedisAddr string // redis backend
}

// New opens the configured backend, wrapped with [Observe]. An empty
// backend name means "none".
func New(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case BackendFile:
		c, err = NewFileCache(opts.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, opts.RedisAddr)
	case BackendNone, "":
		c = NewNullCache()
	default:
		return nil, &UnknownBackendError{Backend: opts.Backend}
	}
	if err != nil {
		return nil, err
	}
	return Observe(c), nil
}

// Observe reports cache activity to [observability.Cache]. The key type
// passed to the hooks is the key's namespace, the text before the first
// ':'.
func Observe(c Cache) Cache {
	if _, ok := c.(*observed); ok {
		return c
	}
	return &observed{Cache: c}
}

type observed struct {
	Cache
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := o.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
