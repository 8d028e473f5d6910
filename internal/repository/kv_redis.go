package repository

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const redisKeyPrefix = "storefront:"

type redisKVStore struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisKVStore(client *redis.Client, logger *logrus.Logger) KVStore {
	return &redisKVStore{client: client, log: logger}
}

func (s *redisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.log.Errorf("RedisStore: Failed to read key %s: %v", key, err)
		return nil, err
	}
	return v, nil
}

// Set stores the value without expiry; the cache is last-write-wins.
func (s *redisKVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		s.log.Errorf("RedisStore: Failed to write key %s: %v", key, err)
		return err
	}
	return nil
}

func (s *redisKVStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (s *redisKVStore) Close() error {
	return s.client.Close()
}
