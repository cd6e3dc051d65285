package questionclient

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/quiz-player/internal/cache"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

const cacheKeyPrefix = "question:raw:"

// CachedFetcher serves raw questions from a cache in front of another
// Fetcher. Cache faults fall through to the upstream.
type CachedFetcher struct {
	next   Fetcher
	cache  cache.CacheService
	ttl    time.Duration
	logger utils.Logger
}

func NewCachedFetcher(next Fetcher, c cache.CacheService, ttl time.Duration, logger utils.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, cache: c, ttl: ttl, logger: logger}
}

func (f *CachedFetcher) Fetch(ctx context.Context, questionID string) (*models.RawQuestion, error) {
	key := cacheKeyPrefix + questionID

	var raw models.RawQuestion
	err := f.cache.Get(ctx, key, &raw)
	if err == nil {
		return &raw, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		f.logger.Warn("Question cache read failed", "question_id", questionID, "error", err)
	}

	fetched, err := f.next.Fetch(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Set(ctx, key, fetched, f.ttl); err != nil {
		f.logger.Warn("Question cache write failed", "question_id", questionID, "error", err)
	}
	return fetched, nil
}

// Invalidate drops every cached question.
func (f *CachedFetcher) Invalidate(ctx context.Context) error {
	return f.cache.DeletePattern(ctx, cacheKeyPrefix+"*")
}
