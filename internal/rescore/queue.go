// Package rescore queues channels whose videos scored badly enough that the
// whole channel should be re-audited.
package rescore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/santidev10/brand-safety-audit/internal/logging"
)

// ErrEmpty is returned by Pop when the queue has nothing waiting.
var ErrEmpty = errors.New("rescore queue empty")

// Queue hands channel ids between the scoring pass that flags them and the
// run that picks them up.
type Queue interface {
	// Push enqueues channel ids, skipping duplicates already waiting.
	Push(ctx context.Context, channelIDs ...string) error
	// Pop dequeues up to limit channel ids, oldest first. Returns ErrEmpty
	// when nothing is queued.
	Pop(ctx context.Context, limit int) ([]string, error)
	// Len reports how many channel ids are waiting.
	Len(ctx context.Context) (int64, error)
}

// RedisQueue is the production queue: a Redis list for ordering plus a set
// for cheap dedup.
type RedisQueue struct {
	client *redis.Client
	key    string
	logger logging.Logger
}

// NewRedisQueue creates a Redis-backed rescore queue under key.
func NewRedisQueue(client *redis.Client, key string, logger logging.Logger) *RedisQueue {
	return &RedisQueue{client: client, key: key, logger: logger}
}

func (q *RedisQueue) setKey() string {
	return q.key + ":members"
}

// Push enqueues channel ids. Ids already waiting are skipped so a channel
// flagged by many low-scoring videos is only rescored once.
func (q *RedisQueue) Push(ctx context.Context, channelIDs ...string) error {
	for _, id := range channelIDs {
		added, err := q.client.SAdd(ctx, q.setKey(), id).Result()
		if err != nil {
			return fmt.Errorf("rescore queue push: %w", err)
		}
		if added == 0 {
			continue
		}
		if err := q.client.RPush(ctx, q.key, id).Err(); err != nil {
			return fmt.Errorf("rescore queue push: %w", err)
		}
	}
	return nil
}

// Pop dequeues up to limit channel ids.
func (q *RedisQueue) Pop(ctx context.Context, limit int) ([]string, error) {
	ids, err := q.client.LPopCount(ctx, q.key, limit).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("rescore queue pop: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrEmpty
	}

	if err := q.client.SRem(ctx, q.setKey(), toMembers(ids)...).Err(); err != nil {
		// Dedup drift only means a channel might be queued twice later.
		q.logger.Warn("failed to clear rescore dedup set", logging.Error(err))
	}
	return ids, nil
}

// Len reports the queue depth.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("rescore queue len: %w", err)
	}
	return n, nil
}

func toMembers(ids []string) []any {
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	return members
}

// NewRedisClient creates a Redis client and verifies the connection.
func NewRedisClient(ctx context.Context, url, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     url,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// MemoryQueue is an in-process queue for tests and single-node runs.
type MemoryQueue struct {
	mu      sync.Mutex
	ids     []string
	members map[string]struct{}
}

// NewMemoryQueue creates an in-memory rescore queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{members: make(map[string]struct{})}
}

// Push enqueues channel ids, skipping duplicates.
func (q *MemoryQueue) Push(_ context.Context, channelIDs ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range channelIDs {
		if _, ok := q.members[id]; ok {
			continue
		}
		q.members[id] = struct{}{}
		q.ids = append(q.ids, id)
	}
	return nil
}

// Pop dequeues up to limit channel ids.
func (q *MemoryQueue) Pop(_ context.Context, limit int) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ids) == 0 {
		return nil, ErrEmpty
	}
	if limit > len(q.ids) {
		limit = len(q.ids)
	}

	ids := append([]string(nil), q.ids[:limit]...)
	q.ids = q.ids[limit:]
	for _, id := range ids {
		delete(q.members, id)
	}
	return ids, nil
}

// Len reports the queue depth.
func (q *MemoryQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.ids)), nil
}
