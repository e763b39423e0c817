package booktracker

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// TokenScope namespaces ephemeral hashes so an activation hash can never be
// redeemed on the reset endpoint or vice versa.
type TokenScope = string

const (
	// ScopeActivation holds account activation hashes.
	ScopeActivation TokenScope = "activation"
	// ScopeReset holds password reset hashes.
	ScopeReset TokenScope = "reset"
)

const (
	// ActivationTokenTTL bounds how long an activation link stays valid.
	ActivationTokenTTL = 24 * time.Hour
	// ResetTokenTTL bounds how long a password reset link stays valid.
	ResetTokenTTL = 15 * time.Minute
)

// TokenStore is the ephemeral hash-to-user mapping with per-key expiry.
// Issuing a hash for a user invalidates any previously outstanding hash in
// the same scope; absence on Get covers both expired and never issued.
type TokenStore interface {
	Put(ctx context.Context, scope TokenScope, hash, userID string, ttl time.Duration) error
	Get(ctx context.Context, scope TokenScope, hash string) (string, error)
	Delete(ctx context.Context, scope TokenScope, hash string) error
}

// RedisTokenStore implements TokenStore on a redis client. Two keys per
// outstanding token: the hash key carries the user id, the per-user pointer
// key tracks the currently outstanding hash so reissues overwrite it.
type RedisTokenStore struct {
	client redis.UniversalClient
	prefix string
	logger Logger
}

var _ TokenStore = (*RedisTokenStore)(nil)

// NewRedisTokenStore will create a token store on the given client. The
// prefix keeps this service's keys apart from other users of the instance.
func NewRedisTokenStore(client redis.UniversalClient, prefix string) *RedisTokenStore {
	if prefix == "" {
		prefix = "booktracker"
	}
	return &RedisTokenStore{
		client: client,
		prefix: prefix,
		logger: defLogger{},
	}
}

func (s *RedisTokenStore) WithLogger(logger Logger) *RedisTokenStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *RedisTokenStore) Put(ctx context.Context, scope TokenScope, hash, userID string, ttl time.Duration) error {
	if hash == "" || userID == "" {
		return goerrors.New("token hash and user id must not be empty", goerrors.CategoryBadInput)
	}

	// Retire the previously outstanding hash for this user, if any.
	prior, err := s.client.Get(ctx, s.userKey(scope, userID)).Result()
	if err != nil && err != redis.Nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read outstanding token pointer")
	}
	if prior != "" && prior != hash {
		if err := s.client.Del(ctx, s.hashKey(scope, prior)).Err(); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to invalidate prior token")
		}
	}

	if err := s.client.Set(ctx, s.hashKey(scope, hash), userID, ttl).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store token hash")
	}

	if err := s.client.Set(ctx, s.userKey(scope, userID), hash, ttl).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store token pointer")
	}

	return nil
}

func (s *RedisTokenStore) Get(ctx context.Context, scope TokenScope, hash string) (string, error) {
	userID, err := s.client.Get(ctx, s.hashKey(scope, hash)).Result()
	if err == redis.Nil {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read token hash")
	}
	return userID, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, scope TokenScope, hash string) error {
	userID, err := s.client.Get(ctx, s.hashKey(scope, hash)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read token hash")
	}

	if err := s.client.Del(ctx, s.hashKey(scope, hash), s.userKey(scope, userID)).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete token hash")
	}

	return nil
}

func (s *RedisTokenStore) hashKey(scope TokenScope, hash string) string {
	return fmt.Sprintf("%s:%s:hash:%s", s.prefix, scope, hash)
}

func (s *RedisTokenStore) userKey(scope TokenScope, userID string) string {
	return fmt.Sprintf("%s:%s:user:%s", s.prefix, scope, userID)
}
