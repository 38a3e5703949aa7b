// Package tokens issues and redeems single-use password-reset tokens.
// Tokens live in Redis under a fixed prefix with a bounded TTL; the
// relational store never sees them.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const forgetPasswordPrefix = "forget-password:"

// TokenTTL is how long a reset token stays redeemable.
const TokenTTL = 3 * 24 * time.Hour

// ErrTokenInvalid is returned when a token is unknown, already used, or
// past its expiry. The three cases are indistinguishable on purpose.
var ErrTokenInvalid = errors.New("tokens: token expired or invalid")

// Store maps opaque reset tokens to user ids. Redemption is two steps —
// Lookup, then Delete once the password change has been persisted — so a
// failed change never burns the token.
type Store interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Lookup(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

// RedisStore implements Store on a Redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Issue creates a fresh random token for the user, valid for TokenTTL.
func (s *RedisStore) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	key := forgetPasswordPrefix + token
	if err := s.client.Set(ctx, key, userID, TokenTTL).Err(); err != nil {
		return "", fmt.Errorf("redis error: %w", err)
	}
	return token, nil
}

// Lookup resolves a token to its user id without consuming it. Returns
// ErrTokenInvalid when the token is absent or expired.
func (s *RedisStore) Lookup(ctx context.Context, token string) (int64, error) {
	val, err := s.client.Get(ctx, forgetPasswordPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrTokenInvalid
	}
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("tokens: corrupt token value %q: %w", val, err)
	}
	return userID, nil
}

// Delete consumes a token, enforcing single use.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, forgetPasswordPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
