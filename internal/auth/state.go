package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StateStore keeps one-time OAuth state values between the login redirect
// and the callback.
type StateStore interface {
	// Put records a state value that stays valid for the store's TTL.
	Put(ctx context.Context, state string) error
	// Consume reports whether state was issued and not yet used, and
	// invalidates it.
	Consume(ctx context.Context, state string) (bool, error)
}

const statePrefix = "homestay:oauth-state:"

// RedisStateStore is a StateStore backed by Redis keys with expiry.
type RedisStateStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStateStore returns a store whose values expire after ttl.
func NewRedisStateStore(client redis.Cmdable, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

func (s *RedisStateStore) Put(ctx context.Context, state string) error {
	if err := s.client.Set(ctx, statePrefix+state, "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("auth.RedisStateStore.Put: %w", err)
	}
	return nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	err := s.client.GetDel(ctx, statePrefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("auth.RedisStateStore.Consume: %w", err)
	}
	return true, nil
}

// NewState returns a random, URL-safe state value.
func NewState() string {
	return uuid.NewString()
}

var _ StateStore = (*RedisStateStore)(nil)
