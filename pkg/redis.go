package pkg

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/redis/go-redis/v9"
)

const redisRetryDelay = 500 * time.Millisecond

// NewRedisClient connects to the quiz bank cache. Redis often starts alongside the
// service, so the first ping is retried up to cfg.RedisConnectTries times.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.RedisPoolSize > 0 {
		opt.PoolSize = cfg.RedisPoolSize
	}

	client := redis.NewClient(opt)
	if err := pingWithRetry(ctx, client, max(cfg.RedisConnectTries, 1)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

func pingWithRetry(ctx context.Context, client *redis.Client, tries int) error {
	var err error
	for attempt := 1; attempt <= tries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil || attempt == tries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * redisRetryDelay):
		}
	}
	return err
}
