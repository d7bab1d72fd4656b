package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "creditor:session:"

var sessionKeys = []string{KeyToken, KeyUser}

// RedisStore keeps one browser's entries under creditor:session:<namespace>:<key>.
type RedisStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisStore scopes a store to namespace. A positive ttl makes entries
// expire after that much inactivity.
func NewRedisStore(client *redis.Client, namespace string, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if namespace == "" {
		return nil, errors.New("session namespace is required")
	}
	return &RedisStore{client: client, namespace: namespace, ttl: ttl}, nil
}

func (s *RedisStore) key(k string) string {
	return redisKeyPrefix + s.namespace + ":" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := s.Touch(ctx); err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set writes key and restarts the idle clock of both session entries in one
// transaction, so the token and user never expire apart.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(key), value, s.ttl)
		if s.ttl > 0 {
			for _, k := range sessionKeys {
				if k != key {
					pipe.Expire(ctx, s.key(k), s.ttl)
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Touch restarts the idle clock of both session entries.
func (s *RedisStore) Touch(ctx context.Context) error {
	if s.ttl <= 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range sessionKeys {
			pipe.Expire(ctx, s.key(k), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis touch: %w", err)
	}
	return nil
}

// Delete removes all keys in a single DEL so they disappear together.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
