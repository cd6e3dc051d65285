package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

type payload struct {
	ID    string   `json:"id"`
	Items []string `json:"items"`
}

func exerciseCache(t *testing.T, c CacheService) {
	ctx := context.Background()

	var got payload
	assert.ErrorIs(t, c.Get(ctx, "question:Q1", &got), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "question:Q1", payload{ID: "Q1", Items: []string{"a"}}, time.Minute))
	require.NoError(t, c.Set(ctx, "question:Q2", payload{ID: "Q2"}, time.Minute))
	require.NoError(t, c.Set(ctx, "session:S1", payload{ID: "S1"}, time.Minute))

	require.NoError(t, c.Get(ctx, "question:Q1", &got))
	assert.Equal(t, payload{ID: "Q1", Items: []string{"a"}}, got)

	require.NoError(t, c.Delete(ctx, "question:Q1"))
	assert.ErrorIs(t, c.Get(ctx, "question:Q1", &got), ErrCacheMiss)

	require.NoError(t, c.DeletePattern(ctx, "question:*"))
	assert.ErrorIs(t, c.Get(ctx, "question:Q2", &got), ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "session:S1", &got))
}

func TestMemoryCache(t *testing.T) {
	exerciseCache(t, NewMemoryCache())
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &memoryCache{entries: map[string]memoryEntry{}, now: func() time.Time { return now }}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Second))
	var v int
	require.NoError(t, c.Get(ctx, "k", &v))
	now = now.Add(time.Second)
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if testing.Short() || url == "" {
		t.Skip("REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	c := NewRedisCache(client, utils.NewNopLogger())
	t.Cleanup(func() {
		_ = c.DeletePattern(context.Background(), "question:*")
		_ = c.DeletePattern(context.Background(), "session:*")
	})
	exerciseCache(t, c)
}
