package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"appdash/internal/config"
)

// RedisSource reads datasets stored as string values under <prefix><name>
type RedisSource struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSource creates a Redis-backed source from configuration
func NewRedisSource(cfg *config.Config) (*RedisSource, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	timeout := cfg.Redis.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout

	return &RedisSource{
		client:    redis.NewClient(opts),
		keyPrefix: cfg.Redis.KeyPrefix,
	}, nil
}

// Fetch GETs the dataset key. A missing key is a fetch failure.
func (s *RedisSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.Key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: dataset %q not found", ErrFetchFailure, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	return data, nil
}

// Key returns the Redis key of a dataset
func (s *RedisSource) Key(name string) string {
	return s.keyPrefix + name
}

// Ping tests the Redis connection
func (s *RedisSource) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Kind returns "redis"
func (s *RedisSource) Kind() string { return "redis" }

// Close closes the Redis connection
func (s *RedisSource) Close() error {
	return s.client.Close()
}
