package pkg

import (
	"context"
	"fmt"
	"time"

	"github.com/learnsphere/lms-service/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the report cache. The cache is best-effort, so
// timeouts stay short: a slow Redis must not stall report requests.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	opt.PoolSize = cfg.RedisPoolSize
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = 500 * time.Millisecond
	opt.WriteTimeout = 500 * time.Millisecond

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return client, nil
}
