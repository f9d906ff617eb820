package cache

import (
	"context"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// Backend names a cache implementation in configuration.
type Backend string

// Supported backends.
const (
	BackendFile  Backend = "file"
	BackendRedis Backend = "redis"
	BackendNone  Backend = "none"
)

// Open returns the cache selected by backend. dir is used by the file
// backend and url by the redis backend. An empty backend means file.
func Open(ctx context.Context, backend Backend, dir, url string) (Cache, error) {
	switch backend {
	case "", BackendFile:
		return NewFileCache(dir)
	case BackendRedis:
		return NewRedisCache(ctx, url, "mavenresolve:")
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", backend)
	}
}
