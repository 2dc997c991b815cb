package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-oidc-session/internal/errors"
	"github.com/redis/go-redis/v9"
)

// Default timeouts for Redis connections created by NewRedisClient.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// RedisStore implements Store on top of Redis hashes and strings.
// Session records are hashes (HSET/HMGET), challenge records are plain strings.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisClient opens a client for addr using the package default timeouts.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  DefaultDialTimeout,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	})
}

// NewRedisStore wraps client. A non-empty prefix is prepended (with a colon) to every key.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: redis %s %q: %w", apperrors.ErrStoreUnavailable, op, key, err)
}

// Ping checks connectivity and returns the round trip time.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return 0, unavailable("ping", "", err)
	}
	return time.Since(start), nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, apperrors.ErrEmptyKey
	}
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, unavailable("exists", key, err)
	}
	return n > 0, nil
}

func (s *RedisStore) GetMultiple(ctx context.Context, key string, fields ...string) ([]*string, error) {
	if key == "" {
		return nil, apperrors.ErrEmptyKey
	}
	if len(fields) == 0 {
		return []*string{}, nil
	}

	raw, err := s.client.HMGet(ctx, s.key(key), fields...).Result()
	if err != nil {
		return nil, unavailable("hmget", key, err)
	}

	values := make([]*string, len(fields))
	for i, v := range raw {
		if str, ok := v.(string); ok {
			values[i] = &str
		}
	}
	return values, nil
}

func (s *RedisStore) SetMultiple(ctx context.Context, key string, fieldValues ...string) error {
	if key == "" {
		return apperrors.ErrEmptyKey
	}
	if len(fieldValues)%2 != 0 {
		return apperrors.ErrOddFieldValues
	}
	if len(fieldValues) == 0 {
		return nil
	}

	args := make([]any, len(fieldValues))
	for i, v := range fieldValues {
		args[i] = v
	}
	if err := s.client.HSet(ctx, s.key(key), args...).Err(); err != nil {
		return unavailable("hset", key, err)
	}
	return nil
}

func (s *RedisStore) SetSingle(ctx context.Context, key, value string) error {
	if key == "" {
		return apperrors.ErrEmptyKey
	}
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (s *RedisStore) GetSingle(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, apperrors.ErrEmptyKey
	}
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("get", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Take(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, apperrors.ErrEmptyKey
	}
	v, err := s.client.GetDel(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("getdel", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return apperrors.ErrEmptyKey
	}
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return unavailable("del", key, err)
	}
	return nil
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if key == "" {
		return apperrors.ErrEmptyKey
	}
	if err := s.client.Expire(ctx, s.key(key), ttl).Err(); err != nil {
		return unavailable("expire", key, err)
	}
	return nil
}
