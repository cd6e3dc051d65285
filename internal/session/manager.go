package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/quiz-player/internal/auth"
	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/questionclient"
)

// FetcherFactory builds a question fetcher that authenticates as creds.
type FetcherFactory func(creds auth.CredentialProvider) questionclient.Fetcher

// sessionCreds is a credential provider the manager can hand a newer
// bearer token.
type sessionCreds interface {
	auth.CredentialProvider
	Update(user *auth.User, token string)
}

type entry struct {
	ctrl    *Controller
	creds   sessionCreds
	token   string
	cancel  context.CancelFunc
	touched time.Time
}

// Manager owns the live sessions and their tick loops.
type Manager struct {
	deps       Deps
	newFetcher FetcherFactory
	interval   time.Duration
	identity   auth.IdentityClient

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.RWMutex
	sessions map[string]*entry
}

func NewManager(deps Deps, newFetcher FetcherFactory, tickInterval time.Duration) *Manager {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if tickInterval <= 0 {
		tickInterval = 250 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		deps:       deps,
		newFetcher: newFetcher,
		interval:   tickInterval,
		ctx:        ctx,
		cancel:     cancel,
		sessions:   make(map[string]*entry),
	}
}

// WithIdentity lets sessions created with a refresh token renew their
// access token through client when the question service rejects it.
func (m *Manager) WithIdentity(client auth.IdentityClient) *Manager {
	m.identity = client
	return m
}

// Create starts a session for user; token is forwarded to the question
// service. refreshToken may be empty, the token is then used as is.
func (m *Manager) Create(ctx context.Context, user *auth.User, token, refreshToken string, cfg ModeConfig) (*Controller, error) {
	if user == nil {
		return nil, qerrors.ErrNotAuthenticated
	}
	creds := m.credentials(user, token, refreshToken)
	deps := m.deps
	if m.newFetcher != nil {
		deps.Fetcher = m.newFetcher(creds)
	}

	ctrl := NewController(uuid.NewString(), user.ID, cfg, deps)
	if err := ctrl.Start(ctx); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(m.ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctrl.Run(runCtx, m.interval)
	}()

	m.mu.Lock()
	m.sessions[ctrl.ID()] = &entry{ctrl: ctrl, creds: creds, token: token, cancel: cancel, touched: m.deps.Now()}
	m.mu.Unlock()
	return ctrl, nil
}

func (m *Manager) credentials(user *auth.User, token, refreshToken string) sessionCreds {
	if m.identity == nil || refreshToken == "" {
		return auth.NewStaticProvider(user, token)
	}
	p := auth.NewIdentityProvider(m.identity, token, refreshToken, m.deps.Logger)
	p.Update(user, token)
	return p
}

// Get returns the caller's session and refreshes the token it fetches with.
func (m *Manager) Get(id string, user *auth.User, token string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok || user == nil || e.ctrl.UserID() != user.ID {
		return nil, qerrors.ErrSessionNotFound
	}
	if token != "" && token != e.token {
		e.token = token
		e.creds.Update(user, token)
	}
	e.touched = m.deps.Now()
	return e.ctrl, nil
}

func (m *Manager) Remove(id string, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok || user == nil || e.ctrl.UserID() != user.ID {
		return qerrors.ErrSessionNotFound
	}
	e.cancel()
	delete(m.sessions, id)
	return nil
}

// Sweep drops sessions nobody has touched for maxIdle.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.deps.Now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.touched.Before(cutoff) {
			e.cancel()
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every tick loop.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}
