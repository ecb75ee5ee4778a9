package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salucol/ips-admin-core/internal/domain/providers"
	redisclient "github.com/salucol/ips-admin-core/internal/infrastructure/clients/redis"
)

const opTimeout = 2 * time.Second

// RedisStore implements CredentialStore on Redis, so a session survives
// console restarts and can be shared by sibling processes. The store
// interface is synchronous; each operation runs under a short internal
// timeout.
type RedisStore struct {
	client *redisclient.Client
	prefix string
}

// NewRedisStore creates a Redis-backed credential store. All keys are
// namespaced under the given prefix.
func NewRedisStore(client *redisclient.Client, prefix string) providers.CredentialStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a value; absent keys yield ""
func (s *RedisStore) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	value, err := s.client.Client().Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	return value, nil
}

// Set stores a value
func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.client.Client().Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Delete removes a value
func (s *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.client.Client().Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}
