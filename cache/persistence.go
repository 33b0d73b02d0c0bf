package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var errNoSnapshot = errors.New("no cache snapshot")

// Persistence stores reference-data cache entries outside the process so they
// survive restarts. Failures are logged by the cache, never fatal.
type Persistence interface {
	Store(ctx context.Context, key string, payload any, ttl time.Duration) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type RedisPersistence struct {
	client *redis.Client
}

func NewRedisPersistence(client *redis.Client) RedisPersistence {
	return RedisPersistence{client: client}
}

func (p RedisPersistence) Store(ctx context.Context, key string, payload any, ttl time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, redisKey(key), data, ttl).Err()
}

func (p RedisPersistence) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := p.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errNoSnapshot
	}
	return data, err
}

func (p RedisPersistence) Delete(ctx context.Context, key string) error {
	return p.client.Del(ctx, redisKey(key)).Err()
}

func redisKey(key string) string {
	return "cache:" + key
}
