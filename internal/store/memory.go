package store

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu        sync.RWMutex
	incorrect map[string][]string
	recent    map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		incorrect: map[string][]string{},
		recent:    map[string][]string{},
	}
}

func (s *MemoryStore) AddIncorrect(_ context.Context, scope, questionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.incorrect[scope] {
		if id == questionID {
			return false, nil
		}
	}
	s.incorrect[scope] = append(s.incorrect[scope], questionID)
	return true, nil
}

func (s *MemoryStore) Incorrect(_ context.Context, scope string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.incorrect[scope]...), nil
}

func (s *MemoryStore) RemoveIncorrect(_ context.Context, scope, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.incorrect[scope]
	for i, id := range ids {
		if id == questionID {
			s.incorrect[scope] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) ClearIncorrect(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.incorrect, scope)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, scope string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.recent[scope]...), nil
}

func (s *MemoryStore) SetRecent(_ context.Context, scope string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent[scope] = append([]string(nil), ids...)
	return nil
}
