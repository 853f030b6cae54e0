package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-otp-redis/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:"

// Store holds the current OTP per identity in Redis, one key per identity.
// A put unconditionally overwrites the previous value, which is what gives
// the single-slot-per-identity invariant: the last issued OTP is the only
// one that can ever verify.
type Store struct {
	client *redis.Client
	ttl    time.Duration // 0 means no expiry
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(identity string) string { return keyPrefix + identity }

// Put stores code as the current OTP for identity, replacing any previous slot.
func (s *Store) Put(ctx context.Context, identity, code string) error {
	if err := s.client.Set(ctx, key(identity), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %v: %w", key(identity), err, domain.ErrStoreUnavailable)
	}
	return nil
}

// Get returns the current OTP for identity. An absent slot (never issued,
// already consumed, or expired) is reported as domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, identity string) (string, error) {
	code, err := s.client.Get(ctx, key(identity)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("no otp for %s: %w", identity, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %v: %w", key(identity), err, domain.ErrStoreUnavailable)
	}
	return code, nil
}

// Delete clears the OTP slot for identity. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, identity string) error {
	if err := s.client.Del(ctx, key(identity)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %v: %w", key(identity), err, domain.ErrStoreUnavailable)
	}
	return nil
}
