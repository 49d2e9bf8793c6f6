package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/auth"
	"contractai-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userNameKey  = "userName"

	apiKeyHeader = "X-API-Key"
)

// Identity is the resolved caller stored in the request context.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// APIKeyLookup resolves an X-API-Key header value to an identity. Returning
// an error rejects the request.
type APIKeyLookup func(ctx *gin.Context, key string) (Identity, error)

// Auth validates the caller and stores the identity in context. An X-API-Key
// header wins when a lookup is wired; otherwise the bearer token is
// verified. Paths registered outside the authed group (health, metrics,
// login) never pass through here.
func Auth(tokens *auth.Tokens, keys APIKeyLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := strings.TrimSpace(c.GetHeader(apiKeyHeader)); key != "" && keys != nil {
			identity, err := keys(c, key)
			if err != nil {
				respond.AppError(c, apperrors.Authentication("invalid or expired API key", nil))
				return
			}
			setIdentity(c, identity)
			c.Next()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			respond.AppError(c, apperrors.Authentication("missing or invalid token", nil))
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if raw == "" {
			respond.AppError(c, apperrors.Authentication("missing or invalid token", nil))
			return
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			respond.AppError(c, apperrors.Authentication("missing or invalid token", nil))
			return
		}

		setIdentity(c, Identity{ID: claims.Sub, Email: claims.Email, Name: claims.Name})
		c.Next()
	}
}

func setIdentity(c *gin.Context, identity Identity) {
	c.Set(userIDKey, identity.ID)
	if identity.Email != "" {
		c.Set(userEmailKey, identity.Email)
	}
	if identity.Name != "" {
		c.Set(userNameKey, identity.Name)
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userNameKey)
	if name, ok := val.(string); ok {
		return name
	}
	return ""
}
