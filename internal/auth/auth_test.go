package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

// MockIdentityClient is a mock implementation of IdentityClient
type MockIdentityClient struct {
	mock.Mock
}

func (m *MockIdentityClient) ParseToken(token string) (*User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockIdentityClient) Refresh(refreshToken string) (string, string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func TestHMACVerifier_RoundTrip(t *testing.T) {
	v := NewHMACVerifier("secret", "quiz-bank")
	token, err := v.Issue(User{ID: "u1", Name: "Ann", Email: "ann@example.com"}, time.Minute)
	require.NoError(t, err)

	u, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "ann@example.com", u.Email)
}

func TestHMACVerifier_Rejects(t *testing.T) {
	good := NewHMACVerifier("secret", "quiz-bank")
	other := NewHMACVerifier("other", "quiz-bank")
	expired, err := good.Issue(User{ID: "u1"}, -time.Minute)
	require.NoError(t, err)
	foreign, err := other.Issue(User{ID: "u1"}, time.Minute)
	require.NoError(t, err)

	for name, tok := range map[string]string{"expired": expired, "wrong key": foreign, "garbage": "abc.def.ghi"} {
		t.Run(name, func(t *testing.T) {
			_, err := good.Verify(context.Background(), tok)
			assert.ErrorIs(t, err, qerrors.ErrInvalidToken)
		})
	}
}

func TestFirstOf(t *testing.T) {
	hmac := NewHMACVerifier("secret", "")
	token, err := hmac.Issue(User{ID: "u2"}, time.Minute)
	require.NoError(t, err)

	chain := FirstOf{NewIdentityVerifier(nil), hmac}
	u, err := chain.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)

	_, err = chain.Verify(context.Background(), "nope")
	assert.ErrorIs(t, err, qerrors.ErrInvalidToken)

	_, err = FirstOf{NewIdentityVerifier(nil)}.Verify(context.Background(), "nope")
	assert.ErrorIs(t, err, qerrors.ErrAuthUnavailable)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}

type stubVerifier struct {
	user *User
	err  error
}

func (s stubVerifier) Verify(context.Context, string) (*User, error) { return s.user, s.err }

func TestRequireBearer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		header   string
		verifier Verifier
		status   int
		body     string
	}{
		{"missing", "", stubVerifier{}, http.StatusUnauthorized, `{"error":"Missing auth token"}`},
		{"rejected", "Bearer x", stubVerifier{err: fmt.Errorf("%w: bad sig", qerrors.ErrInvalidToken)}, http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"verifier down", "Bearer x", stubVerifier{err: errors.New("cert missing")}, http.StatusInternalServerError, `{"error":"Auth error"}`},
		{"ok", "Bearer x", stubVerifier{user: &User{ID: "u9"}}, http.StatusOK, `{"user":"u9"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", RequireBearer(tt.verifier, utils.NewNopLogger()), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"user": UserFromContext(c).ID})
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestIdentityProvider_ForceRefresh(t *testing.T) {
	client := new(MockIdentityClient)
	client.On("ParseToken", "old").Return(&User{ID: "u1"}, nil)
	client.On("Refresh", "r1").Return("new", "r2", nil).Once()
	client.On("ParseToken", "new").Return(&User{ID: "u1"}, nil)

	p := NewIdentityProvider(client, "old", "r1", utils.NewNopLogger())
	tok, err := p.IDToken(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "old", tok)

	tok, err = p.IDToken(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "new", tok)
	assert.Equal(t, "u1", p.CurrentUser().ID)
	client.AssertExpectations(t)
}

func TestIdentityProvider_FailedRefreshSignsOut(t *testing.T) {
	client := new(MockIdentityClient)
	client.On("ParseToken", "old").Return(&User{ID: "u1"}, nil)
	client.On("Refresh", "r1").Return("", "", errors.New("revoked"))

	p := NewIdentityProvider(client, "old", "r1", utils.NewNopLogger())
	var seen []*User
	unsubscribe := p.OnAuthStateChanged(func(u *User) { seen = append(seen, u) })
	defer unsubscribe()

	_, err := p.IDToken(context.Background(), true)
	assert.ErrorIs(t, err, qerrors.ErrNotAuthenticated)
	assert.Nil(t, p.CurrentUser())
	require.Len(t, seen, 1)
	assert.Nil(t, seen[0])

	_, err = p.IDToken(context.Background(), false)
	assert.ErrorIs(t, err, qerrors.ErrNotAuthenticated)
}

func TestStaticProvider_Update(t *testing.T) {
	p := NewStaticProvider(&User{ID: "a"}, "t1")
	calls := 0
	unsubscribe := p.OnAuthStateChanged(func(*User) { calls++ })

	p.Update(&User{ID: "b"}, "t2")
	unsubscribe()
	p.Update(nil, "")

	assert.Equal(t, 1, calls)
	assert.Nil(t, p.CurrentUser())
}

func TestNewVerifierChain(t *testing.T) {
	_, err := NewVerifierChain(nil, "", "")
	assert.ErrorIs(t, err, qerrors.ErrAuthUnavailable)

	v, err := NewVerifierChain(nil, "s3cret", "bank")
	require.NoError(t, err)
	token, err := NewHMACVerifier("s3cret", "bank").Issue(User{ID: "u1"}, time.Minute)
	require.NoError(t, err)
	u, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}

func TestIdentityProvider_UpdateKeepsRefreshToken(t *testing.T) {
	client := new(MockIdentityClient)
	client.On("ParseToken", "old").Return(nil, errors.New("foreign issuer"))
	client.On("ParseToken", "new").Return(&User{ID: "u1"}, nil)
	client.On("Refresh", "r1").Return("new", "r2", nil)

	p := NewIdentityProvider(client, "old", "r1", utils.NewNopLogger())
	assert.Nil(t, p.CurrentUser())

	p.Update(&User{ID: "u1"}, "bearer")
	tok, err := p.IDToken(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok)

	tok, err = p.IDToken(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "new", tok)
	client.AssertExpectations(t)
}
