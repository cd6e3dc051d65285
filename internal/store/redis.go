package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

// RedisStore keeps the incorrect set as a SET (dedup) plus a LIST (order).
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger utils.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger utils.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func incorrectSetKey(scope string) string  { return fmt.Sprintf("quiz:%s:incorrect:set", scope) }
func incorrectListKey(scope string) string { return fmt.Sprintf("quiz:%s:incorrect:list", scope) }
func recentKey(scope string) string        { return fmt.Sprintf("quiz:%s:recent", scope) }

func (s *RedisStore) AddIncorrect(ctx context.Context, scope, questionID string) (bool, error) {
	added, err := s.client.SAdd(ctx, incorrectSetKey(scope), questionID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add incorrect question: %w", err)
	}
	if added == 0 {
		return false, nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, incorrectListKey(scope), questionID)
		if s.ttl > 0 {
			pipe.Expire(ctx, incorrectSetKey(scope), s.ttl)
			pipe.Expire(ctx, incorrectListKey(scope), s.ttl)
		}
		return nil
	})
	if err != nil {
		return true, fmt.Errorf("failed to record incorrect question order: %w", err)
	}
	return true, nil
}

func (s *RedisStore) Incorrect(ctx context.Context, scope string) ([]string, error) {
	ids, err := s.client.LRange(ctx, incorrectListKey(scope), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to list incorrect questions: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) RemoveIncorrect(ctx context.Context, scope, questionID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, incorrectSetKey(scope), questionID)
		pipe.LRem(ctx, incorrectListKey(scope), 0, questionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove incorrect question: %w", err)
	}
	return nil
}

func (s *RedisStore) ClearIncorrect(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, incorrectSetKey(scope), incorrectListKey(scope)).Err(); err != nil {
		return fmt.Errorf("failed to clear incorrect questions: %w", err)
	}
	s.logger.Debug("Cleared incorrect questions", "scope", scope)
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, scope string) ([]string, error) {
	ids, err := s.client.LRange(ctx, recentKey(scope), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read recent questions: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) SetRecent(ctx context.Context, scope string, ids []string) error {
	key := recentKey(scope)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(ids) == 0 {
			return nil
		}
		values := make([]interface{}, len(ids))
		for i, id := range ids {
			values[i] = id
		}
		pipe.RPush(ctx, key, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store recent questions: %w", err)
	}
	return nil
}
