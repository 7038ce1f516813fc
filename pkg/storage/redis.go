package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key the document is stored under.
const DefaultRedisKey = "possible:graphs"

// Redis stores the document under a single Redis key.
type Redis struct {
	client *redis.Client
	key    string
}

// RedisOptions configures a [Redis] backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// NewRedis connects to Redis and verifies the connection with PING,
// retrying a few times while the server comes up.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err := retryPing(ctx, ping); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}
	return NewRedisWithClient(client, opts.Key), nil
}

// NewRedisWithClient wraps an existing client. An empty key selects
// [DefaultRedisKey].
func NewRedisWithClient(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// Load reads the document. A missing key loads as empty.
func (r *Redis) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return data, nil
}

// Save replaces the document. The key never expires.
func (r *Redis) Save(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Name returns "redis".
func (r *Redis) Name() string { return "redis" }

// Close closes the client.
func (r *Redis) Close() error { return r.client.Close() }

// Ensure Redis implements Backend.
var _ Backend = (*Redis)(nil)
