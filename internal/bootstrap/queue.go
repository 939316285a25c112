package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/santidev10/brand-safety-audit/internal/config"
	"github.com/santidev10/brand-safety-audit/internal/logging"
	"github.com/santidev10/brand-safety-audit/internal/rescore"
)

// QueueComponents holds the rescore queue and its underlying Redis client.
// Client is nil when Redis is not configured and the queue is in-memory.
type QueueComponents struct {
	Queue  rescore.Queue
	Client *redis.Client
}

// SetupRescoreQueue connects to Redis for the rescore queue. Without a Redis
// URL the queue degrades to a process-local one, which loses pending rescores
// on restart.
func SetupRescoreQueue(ctx context.Context, cfg *config.Config, logger logging.Logger) (*QueueComponents, error) {
	if cfg.Redis.URL == "" {
		logger.Warn("no Redis URL configured, using in-memory rescore queue")
		return &QueueComponents{Queue: rescore.NewMemoryQueue()}, nil
	}

	client, err := rescore.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to Redis: %w", err)
	}

	queue := rescore.NewRedisQueue(client, cfg.Redis.RescoreQueueKey, logger)
	return &QueueComponents{Queue: queue, Client: client}, nil
}
