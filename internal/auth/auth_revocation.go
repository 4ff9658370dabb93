package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const RevokedTokenKeyPrefix = "auth:revoked:"

func RevokedTokenKey(tokenID string) string {
	return RevokedTokenKeyPrefix + tokenID
}

// RevocationStore remembers logged-out token ids until they would have
// expired anyway.
//
//go:generate mockgen -source=auth_revocation.go -destination=mock/auth_revocation_mock.go -package=mock
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisRevocationStore struct {
	rdb *redis.Client
}

func NewRedisRevocationStore(rdb *redis.Client) RevocationStore {
	return &redisRevocationStore{rdb: rdb}
}

func (s *redisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, RevokedTokenKey(tokenID), "1", ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.rdb.Get(ctx, RevokedTokenKey(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
