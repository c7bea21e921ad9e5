package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/rueidis"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Store is the key-value surface used for ephemeral tokens and rate-limit
// counters. Expiry is delegated to the backing store.
type Store interface {
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

type RedisStore struct {
	client rueidis.Client
}

func NewRedisStore(client rueidis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	cmd := s.client.B().Setex().Key(key).Seconds(int64(ttl.Seconds())).Value(value).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	cmd := s.client.B().Get().Key(key).Build()
	value, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return value, nil
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	cmd := s.client.B().Del().Key(key).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	cmd := s.client.B().Ttl().Key(key).Build()
	seconds, err := s.client.Do(ctx, cmd).ToInt64()
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	cmd := s.client.B().Incr().Key(key).Build()
	return s.client.Do(ctx, cmd).ToInt64()
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	cmd := s.client.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build()
	return s.client.Do(ctx, cmd).Error()
}
