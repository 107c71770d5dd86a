package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jnitin/flask-catalog/internal/config"
)

// NewRedisClient dials Redis and fails fast when the server is unreachable.
// The client backs the mail outbox stream shared by the api and the worker.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, name string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		ClientName:  name,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return client, nil
}

// Probe adapts a redis client to the health check interface.
type Probe struct {
	Client redis.UniversalClient
}

func (p Probe) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
