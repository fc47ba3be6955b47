package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// RedisConfig holds connection parameters for a Redis cache.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// Redis implements Cache via rueidis.
type Redis struct {
	client rueidis.Client
}

var _ Cache = (*Redis)(nil)

// NewRedis creates a Redis-backed cache and verifies connectivity.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("addr is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{cfg.Addr},
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	ping := client.B().Ping().Build()
	if err := client.Do(ctx, ping).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Redis{client: client}, nil
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := c.client.B().Get().Key(key).Build()
	data, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var cmd rueidis.Completed
	if ttl > 0 {
		cmd = c.client.B().Set().Key(key).Value(string(value)).Ex(ttl).Build()
	} else {
		cmd = c.client.B().Set().Key(key).Value(string(value)).Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *Redis) Delete(ctx context.Context, key string) error {
	cmd := c.client.B().Del().Key(key).Build()
	return c.client.Do(ctx, cmd).Error()
}

// Close shuts down the underlying client.
func (c *Redis) Close() {
	c.client.Close()
}
