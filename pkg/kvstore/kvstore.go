// Package kvstore is a thin typed facade over an external key-value store
// (spec.md §4: KV Store Adapter), backed by Redis. Every write refreshes the
// key's TTL, per spec.md invariant (iii).
package kvstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the KV Store Adapter contract used by every repository.
// Implemented by *RedisStore; tests substitute a miniredis-backed instance.
type Store interface {
	// HSet writes hash fields and refreshes the key's TTL.
	HSet(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
	// HGetAll returns a hash's fields, or nil if the key is absent.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// Expire refreshes a key's TTL. Returns false if the key does not exist.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Del deletes a key, returning the number of keys removed (0 or 1).
	Del(ctx context.Context, key string) (int64, error)

	// RPush appends a value to a list and refreshes the key's TTL.
	RPush(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// LRange returns all elements of a list in insertion order, or nil if absent.
	LRange(ctx context.Context, key string) ([][]byte, error)

	// Set writes a byte value and refreshes the key's TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns a byte value, or nil if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
}

// RedisStore implements Store over a *redis.Client, grounded on
// davrot-gogotex/internal/sessions/redis_repository.go's idiom of treating
// redis.Nil as "absent" rather than propagating it as an error.
type RedisStore struct {
	client *redis.Client
}

// New creates a RedisStore backed by client.
func New(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewFromURL dials Redis using a redis:// URL (spec.md §6 REDIS_URL).
func NewFromURL(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return New(redis.NewClient(opts)), nil
}

// Client returns the underlying *redis.Client for health checks.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) HSet(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	args := make(map[string]any, len(fields))
	for k, v := range fields {
		args[k] = v
	}
	pipe.HSet(ctx, key, args)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	h, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, nil
	}
	return h, nil
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.Expire(ctx, key, ttl).Result()
}

func (s *RedisStore) Del(ctx context.Context, key string) (int64, error) {
	return s.client.Del(ctx, key).Result()
}

func (s *RedisStore) RPush(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, value)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) LRange(ctx context.Context, key string) ([][]byte, error) {
	vals, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}
