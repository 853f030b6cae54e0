package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-otp-redis/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient creates the process-wide Redis client and verifies connectivity
// with a ping. Every operation on the returned client is bounded by the
// dial/read/write timeouts below, so a dead Redis never blocks a request
// indefinitely. Callers own the client and must Close it on shutdown.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}
