package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/socialquest/engine"
)

const redisKeyPrefix = "socialquest:state:"

// RedisStore keeps each state as a JSON string without expiry.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(key string) string { return redisKeyPrefix + key }

func (r *RedisStore) Load(ctx context.Context, key string) (*engine.State, error) {
	b, err := r.rdb.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return engine.Decode(b)
}

func (r *RedisStore) Save(ctx context.Context, key string, s *engine.State) error {
	b, err := engine.Encode(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, redisKey(key), b, 0).Err()
}
