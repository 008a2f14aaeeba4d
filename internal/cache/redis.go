package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis is a Directory backed by a Redis instance, for deployments where
// several server processes should share one directory cache. Freshness is
// enforced server-side via key TTLs.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ Directory = (*Redis)(nil)

func NewRedis(addr, username, password string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Username: username,
			Password: password,
			DB:       0,
		}),
		ttl:    ttl,
		prefix: "directory:",
	}
}

func (r *Redis) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == nil {
		return data, nil
	}
	if err != redis.Nil {
		// Treat a broken cache as a miss; the fetch below still works.
		log.Warn().Err(err).Str("key", key).Msg("directory cache read failed")
	}

	data, err = fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("directory cache write failed")
	}

	return data, nil
}

func (r *Redis) Invalidate(key string) {
	if err := r.client.Del(context.Background(), r.prefix+key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("directory cache invalidate failed")
	}
}

// Ping verifies connectivity, used at startup to decide whether to fall back
// to the in-memory cache.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
