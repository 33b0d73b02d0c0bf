package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"luxetravel/entity"
)

const (
	busTokenKey  = "session:token:bus"
	foodTokenKey = "session:token:food"
)

// Tokens are the raw persisted bearer tokens, one per backend service.
type Tokens struct {
	Bus  string
	Food string
}

type TokenPersistence interface {
	Save(ctx context.Context, state entity.SessionState) error
	Load(ctx context.Context) (Tokens, error)
	Clear(ctx context.Context) error
}

type RedisTokenPersistence struct {
	client *redis.Client
}

func NewRedisTokenPersistence(client *redis.Client) RedisTokenPersistence {
	return RedisTokenPersistence{client: client}
}

// Save stores each token with a TTL matching its own expiry, so Redis evicts
// credentials at the same moment they stop being usable.
func (p RedisTokenPersistence) Save(ctx context.Context, state entity.SessionState) error {
	now := time.Now()
	for key, cred := range map[string]*entity.Credential{
		busTokenKey:  state.Bus,
		foodTokenKey: state.Food,
	} {
		if cred == nil || cred.Expired(now) {
			continue
		}
		if err := p.client.Set(ctx, key, cred.Token, cred.TimeUntilExpiry(now)).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (p RedisTokenPersistence) Load(ctx context.Context) (Tokens, error) {
	bus, err := p.client.Get(ctx, busTokenKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Tokens{}, nil
		}
		return Tokens{}, err
	}
	food, err := p.client.Get(ctx, foodTokenKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Tokens{}, nil
		}
		return Tokens{}, err
	}
	return Tokens{Bus: bus, Food: food}, nil
}

func (p RedisTokenPersistence) Clear(ctx context.Context) error {
	return p.client.Del(ctx, busTokenKey, foodTokenKey).Err()
}
