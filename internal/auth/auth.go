// Package auth supplies bearer tokens to the question client and verifies
// them on the question bank side. Credential issuance is left to the
// identity provider.
package auth

import (
	"context"
	"sync"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// CredentialProvider is the client-side view of the identity provider.
type CredentialProvider interface {
	CurrentUser() *User
	IDToken(ctx context.Context, forceRefresh bool) (string, error)
	OnAuthStateChanged(fn func(*User)) (unsubscribe func())
}

// subscribers fans auth-state changes out to listeners.
type subscribers struct {
	mu    sync.Mutex
	next  int
	funcs map[int]func(*User)
}

func (s *subscribers) add(fn func(*User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.funcs == nil {
		s.funcs = map[int]func(*User){}
	}
	id := s.next
	s.next++
	s.funcs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.funcs, id)
	}
}

func (s *subscribers) notify(u *User) {
	s.mu.Lock()
	fns := make([]func(*User), 0, len(s.funcs))
	for _, fn := range s.funcs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}

// StaticProvider hands out a token it cannot refresh, e.g. the bearer a
// browser forwarded to the player API.
type StaticProvider struct {
	mu    sync.RWMutex
	user  *User
	token string
	subs  subscribers
}

func NewStaticProvider(user *User, token string) *StaticProvider {
	return &StaticProvider{user: user, token: token}
}

func (p *StaticProvider) CurrentUser() *User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user
}

func (p *StaticProvider) IDToken(ctx context.Context, _ bool) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, ctx.Err()
}

func (p *StaticProvider) OnAuthStateChanged(fn func(*User)) func() {
	return p.subs.add(fn)
}

// Update swaps in a new user and token and notifies subscribers.
func (p *StaticProvider) Update(user *User, token string) {
	p.mu.Lock()
	p.user = user
	p.token = token
	p.mu.Unlock()
	p.subs.notify(user)
}
