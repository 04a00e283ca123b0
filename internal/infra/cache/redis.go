package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"leetcode-bot/internal/domain"
)

// Redis реализует domain.TaskCache через Redis.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis создаёт кэш.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func taskKey(dateID int64) string {
	return fmt.Sprintf("task:%d", dateID)
}

// GetTask возвращает задачу по dateId.
func (c *Redis) GetTask(ctx context.Context, dateID int64) (domain.Task, error) {
	raw, err := c.client.Get(ctx, taskKey(dateID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("redis get: %w", err)
	}
	return decodeTask(raw)
}

// PutTask записывает задачу, если ключ ещё не задан.
func (c *Redis) PutTask(ctx context.Context, task domain.Task) error {
	raw, err := encodeTask(task)
	if err != nil {
		return err
	}
	if err := c.client.SetNX(ctx, taskKey(task.DateID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}

// Ping проверяет доступность Redis.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
