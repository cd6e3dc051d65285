package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

// IdentityClient is the slice of the identity provider the player needs.
type IdentityClient interface {
	ParseToken(token string) (*User, error)
	Refresh(refreshToken string) (accessToken, newRefreshToken string, err error)
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

// casdoorClient adapts the Casdoor SDK to IdentityClient.
type casdoorClient struct {
	client *casdoorsdk.Client
}

func NewCasdoorClient(cfg CasdoorConfig) IdentityClient {
	return &casdoorClient{
		client: casdoorsdk.NewClient(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.Organization, cfg.Application),
	}
}

func (c *casdoorClient) ParseToken(token string) (*User, error) {
	claims, err := c.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qerrors.ErrInvalidToken, err)
	}
	return &User{ID: claims.User.Id, Name: claims.User.Name, Email: claims.User.Email}, nil
}

func (c *casdoorClient) Refresh(refreshToken string) (string, string, error) {
	tok, err := c.client.RefreshOAuthToken(refreshToken)
	if err != nil {
		return "", "", err
	}
	next := tok.RefreshToken
	if next == "" {
		next = refreshToken
	}
	return tok.AccessToken, next, nil
}

// IdentityProvider is a CredentialProvider over an access/refresh token
// pair. A forced refresh that fails signs the user out.
type IdentityProvider struct {
	client IdentityClient
	logger utils.Logger

	mu           sync.Mutex
	user         *User
	accessToken  string
	refreshToken string
	subs         subscribers
}

func NewIdentityProvider(client IdentityClient, accessToken, refreshToken string, logger utils.Logger) *IdentityProvider {
	p := &IdentityProvider{
		client:       client,
		logger:       logger,
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
	if u, err := client.ParseToken(accessToken); err == nil {
		p.user = u
	}
	return p
}

func (p *IdentityProvider) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user
}

func (p *IdentityProvider) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	user, current, refresh := p.user, p.accessToken, p.refreshToken
	p.mu.Unlock()

	if !forceRefresh || refresh == "" {
		if user == nil {
			return "", qerrors.ErrNotAuthenticated
		}
		return current, nil
	}

	access, next, err := p.client.Refresh(refresh)
	if err == nil {
		if user, err = p.client.ParseToken(access); err == nil {
			p.mu.Lock()
			changed := p.user == nil || p.user.ID != user.ID
			p.user, p.accessToken, p.refreshToken = user, access, next
			p.mu.Unlock()
			if changed {
				p.subs.notify(user)
			}
			return access, nil
		}
	}

	p.logger.Warn("Token refresh failed, signing out", "error", err)
	p.mu.Lock()
	p.user, p.accessToken, p.refreshToken = nil, "", ""
	p.mu.Unlock()
	p.subs.notify(nil)
	return "", fmt.Errorf("%w: %v", qerrors.ErrNotAuthenticated, err)
}

func (p *IdentityProvider) OnAuthStateChanged(fn func(*User)) func() {
	return p.subs.add(fn)
}

// Update swaps in a verified user and access token. The refresh token is kept.
func (p *IdentityProvider) Update(user *User, accessToken string) {
	p.mu.Lock()
	p.user = user
	p.accessToken = accessToken
	p.mu.Unlock()
	p.subs.notify(user)
}
