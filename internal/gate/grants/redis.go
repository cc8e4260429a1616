package grants

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshKeyPrefix        = "auth:refresh:"
	resetTokenKeyPrefix     = "auth:reset:token:"
	resetPrincipalKeyPrefix = "auth:reset:principal:"
	verifyKeyPrefix         = "auth:verify:"
)

// RedisStore implements Store on Redis. TTLs map directly onto key
// expiry, so an expired grant is simply gone.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client. Accepting the client
// rather than an address keeps the store testable against miniredis.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SetRefresh(
	ctx context.Context,
	principalID, fingerprint string,
	ttl time.Duration,
) error {
	return s.client.Set(ctx, refreshKeyPrefix+principalID, fingerprint, ttl).Err()
}

func (s *RedisStore) GetRefresh(ctx context.Context, principalID string) (string, error) {
	val, err := s.client.Get(ctx, refreshKeyPrefix+principalID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return val, nil
}

func (s *RedisStore) DeleteRefresh(ctx context.Context, principalID string) error {
	return s.client.Del(ctx, refreshKeyPrefix+principalID).Err()
}

func (s *RedisStore) SetReset(
	ctx context.Context,
	principalID, token string,
	ttl time.Duration,
) error {
	// Supersede any previous grant for this principal before writing
	// the new one: one active grant per principal.
	prev, err := s.client.GetDel(ctx, resetPrincipalKeyPrefix+principalID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if prev != "" {
		if err := s.client.Del(ctx, resetTokenKeyPrefix+prev).Err(); err != nil {
			return err
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, resetTokenKeyPrefix+token, principalID, ttl)
	pipe.Set(ctx, resetPrincipalKeyPrefix+principalID, token, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) ConsumeReset(ctx context.Context, token string) (string, error) {
	principalID, err := s.client.GetDel(ctx, resetTokenKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}

	_ = s.client.Del(ctx, resetPrincipalKeyPrefix+principalID).Err()
	return principalID, nil
}

func (s *RedisStore) SetVerification(
	ctx context.Context,
	email, code string,
	ttl time.Duration,
) error {
	return s.client.Set(ctx, verifyKeyPrefix+email, code, ttl).Err()
}

func (s *RedisStore) GetVerification(ctx context.Context, email string) (string, error) {
	code, err := s.client.Get(ctx, verifyKeyPrefix+email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return code, nil
}

func (s *RedisStore) DeleteVerification(ctx context.Context, email string) error {
	return s.client.Del(ctx, verifyKeyPrefix+email).Err()
}
