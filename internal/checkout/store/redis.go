package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"farmshop/internal/checkout"
	"farmshop/pkg/platform/sentinel"
)

// SessionTTL bounds how long an abandoned checkout is kept.
const SessionTTL = 24 * time.Hour

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisStore keeps checkout sessions as JSON with a sliding TTL; every save
// extends it.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: SessionTTL}
}

// WithTTL overrides SessionTTL. Non-positive values are ignored.
func (s *RedisStore) WithTTL(ttl time.Duration) *RedisStore {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, key string) (*checkout.Session, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	var sess checkout.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// an unreadable session is as good as none
		return nil, sentinel.ErrNotFound
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, sess *checkout.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode checkout session: %w", err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set checkout session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete checkout session: %w", err)
	}
	return nil
}
