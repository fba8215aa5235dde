// Package mirror holds the persistent key-value backends the roster cache writes through to.
package mirror

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-roster/core"
)

// Store is a durable key-value store.
type Store interface {
	// Get returns the value under key; found is false when the key was never set.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	io.Closer
}

// Open returns the Store selected by conf.Mirror.Driver.
func Open(ctx context.Context, conf *core.Config) (Store, error) {
	switch conf.Mirror.Driver {
	case "", "file":
		return NewFileStore(conf.Mirror.Dir)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Mirror.RedisAddr,
			Password: conf.Mirror.RedisPassword,
		})
		return NewRedisStore(ctx, client, conf.AppName)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, errors.Errorf("unknown mirror driver %q", conf.Mirror.Driver)
	}
}
