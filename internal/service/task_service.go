package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ocrsdk/cloud-runner/internal/model"
)

// ErrTaskNotFound is returned when no record exists for an id.
var ErrTaskNotFound = errors.New("task not found")

const userTaskTTL = 24 * time.Hour

// TaskStore persists the web front-end's task records.
type TaskStore interface {
	Save(ctx context.Context, task *model.UserTask) error
	Get(ctx context.Context, id string) (*model.UserTask, error)
	List(ctx context.Context, userID string, limit int) ([]*model.UserTask, error)
}

// RedisTaskStore keeps task records in Redis for a day.
type RedisTaskStore struct {
	redis *redis.Client
}

func NewRedisTaskStore(redisClient *redis.Client) *RedisTaskStore {
	return &RedisTaskStore{redis: redisClient}
}

func taskKey(id string) string {
	return fmt.Sprintf("usertask:%s", id)
}

func userIndexKey(userID string) string {
	return fmt.Sprintf("usertasks:%s", userID)
}

// Save stores task and indexes it under its owner by creation time.
func (s *RedisTaskStore) Save(ctx context.Context, task *model.UserTask) error {
	task.UpdatedAt = time.Now()

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, taskKey(task.ID), data, userTaskTTL)
	pipe.ZAdd(ctx, userIndexKey(task.UserID), redis.Z{
		Score:  float64(task.CreatedAt.UnixNano()),
		Member: task.ID,
	})
	pipe.Expire(ctx, userIndexKey(task.UserID), userTaskTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

func (s *RedisTaskStore) Get(ctx context.Context, id string) (*model.UserTask, error) {
	data, err := s.redis.Get(ctx, taskKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	var task model.UserTask
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

// List returns the newest tasks of userID first. Expired records are skipped.
func (s *RedisTaskStore) List(ctx context.Context, userID string, limit int) ([]*model.UserTask, error) {
	ids, err := s.redis.ZRevRange(ctx, userIndexKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*model.UserTask, 0, len(ids))
	for _, id := range ids {
		task, err := s.Get(ctx, id)
		if errors.Is(err, ErrTaskNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
