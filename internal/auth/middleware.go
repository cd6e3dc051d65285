package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

const (
	ContextUserKey  = "user"
	ContextUserID   = "user_id"
	ContextTokenKey = "bearer_token"
)

// BearerToken extracts the token from an "Authorization: Bearer x" header.
func BearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireBearer rejects requests without a verifiable bearer token.
func RequireBearer(verifier Verifier, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing auth token"})
			return
		}

		user, err := verifier.Verify(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, qerrors.ErrInvalidToken):
			logger.Debug("Rejected bearer token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		default:
			logger.Error("Token verification failed", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Auth error"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserID, user.ID)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// UserFromContext returns the user stored by RequireBearer.
func UserFromContext(c *gin.Context) *User {
	if v, ok := c.Get(ContextUserKey); ok {
		if u, ok := v.(*User); ok {
			return u
		}
	}
	return nil
}
