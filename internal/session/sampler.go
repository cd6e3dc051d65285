package session

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/SAP-F-2025/quiz-player/internal/store"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

// Sampler picks question IDs from the pool Q1..Qn minus exclusions.
type Sampler struct {
	pool    []string
	recent  store.RecentList
	logger  utils.Logger
	shuffle func(n int, swap func(i, j int))
}

func NewSampler(poolSize int, excluded []string, recent store.RecentList, logger utils.Logger) *Sampler {
	skip := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}
	pool := make([]string, 0, poolSize)
	for i := 1; i <= poolSize; i++ {
		id := fmt.Sprintf("Q%d", i)
		if !skip[id] {
			pool = append(pool, id)
		}
	}
	return &Sampler{pool: pool, recent: recent, logger: logger, shuffle: rand.Shuffle}
}

func (s *Sampler) PoolSize() int { return len(s.pool) }

// Sample returns n distinct IDs. With avoidRecent, IDs served by the last
// sampling are skipped as long as enough fresh ones remain, and the pick
// becomes the new recent list.
func (s *Sampler) Sample(ctx context.Context, scope string, n int, avoidRecent bool) ([]string, error) {
	if len(s.pool) == 0 {
		return nil, fmt.Errorf("question pool is empty")
	}
	if n > len(s.pool) {
		n = len(s.pool)
	}

	candidates := s.pool
	if avoidRecent && s.recent != nil {
		recent, err := s.recent.Recent(ctx, scope)
		if err != nil {
			s.logger.Warn("Could not read recent questions", "scope", scope, "error", err)
		}
		if fresh := without(s.pool, recent); len(fresh) >= n {
			candidates = fresh
		}
	}

	picked := append([]string(nil), candidates...)
	s.shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	picked = picked[:n]

	if avoidRecent && s.recent != nil {
		if err := s.recent.SetRecent(ctx, scope, picked); err != nil {
			s.logger.Warn("Could not store recent questions", "scope", scope, "error", err)
		}
	}
	return picked, nil
}

func without(pool, drop []string) []string {
	if len(drop) == 0 {
		return pool
	}
	skip := make(map[string]bool, len(drop))
	for _, id := range drop {
		skip[id] = true
	}
	out := make([]string, 0, len(pool))
	for _, id := range pool {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}
