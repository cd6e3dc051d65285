package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
)

// Verifier checks a bearer token and returns the user it was issued to.
// Rejected tokens wrap ErrInvalidToken; anything else means the verifier
// itself failed.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// IdentityVerifier verifies tokens against the identity provider's certificate.
type IdentityVerifier struct {
	client IdentityClient
}

func NewIdentityVerifier(client IdentityClient) *IdentityVerifier {
	return &IdentityVerifier{client: client}
}

func (v *IdentityVerifier) Verify(ctx context.Context, token string) (*User, error) {
	if v.client == nil {
		return nil, qerrors.ErrAuthUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := v.client.ParseToken(token)
	if err != nil {
		if errors.Is(err, qerrors.ErrInvalidToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", qerrors.ErrAuthUnavailable, err)
	}
	return u, nil
}

type Claims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// HMACVerifier verifies HS256 tokens signed with a shared secret. Used for
// local development and service-to-service calls.
type HMACVerifier struct {
	secret []byte
	issuer string
}

func NewHMACVerifier(secret, issuer string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), issuer: issuer}
}

func (v *HMACVerifier) Issue(user User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *HMACVerifier) Verify(_ context.Context, token string) (*User, error) {
	if len(v.secret) == 0 {
		return nil, qerrors.ErrAuthUnavailable
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", qerrors.ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", qerrors.ErrInvalidToken)
	}
	return &User{ID: claims.Subject, Name: claims.Name, Email: claims.Email}, nil
}

// FirstOf tries verifiers in order and returns the first success. A
// rejection by every verifier is ErrInvalidToken.
type FirstOf []Verifier

func (f FirstOf) Verify(ctx context.Context, token string) (*User, error) {
	var lastErr error = qerrors.ErrAuthUnavailable
	rejected := false
	for _, v := range f {
		u, err := v.Verify(ctx, token)
		if err == nil {
			return u, nil
		}
		if errors.Is(err, qerrors.ErrInvalidToken) {
			rejected = true
		}
		lastErr = err
	}
	if rejected {
		return nil, fmt.Errorf("%w: %v", qerrors.ErrInvalidToken, lastErr)
	}
	return nil, lastErr
}

// NewVerifierChain accepts identity provider tokens when client is set and
// locally signed HS256 tokens when secret is set.
func NewVerifierChain(client IdentityClient, secret, issuer string) (Verifier, error) {
	var chain FirstOf
	if client != nil {
		chain = append(chain, NewIdentityVerifier(client))
	}
	if secret != "" {
		chain = append(chain, NewHMACVerifier(secret, issuer))
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: configure Casdoor or JWT_SECRET", qerrors.ErrAuthUnavailable)
	}
	return chain, nil
}
