package mirror

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*redisStore)(nil)

// NewRedisStore returns a Store backed by redis; keys are namespaced "<namespace>:mirror:<key>".
func NewRedisStore(ctx context.Context, client *redis.Client, namespace string) (Store, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}
	return &redisStore{
		client: client,
		prefix: strings.ToLower(namespace) + ":mirror:",
	}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "reading %q", key)
	}
	return data, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "writing %q", key)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrapf(err, "deleting %q", key)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
