package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danmelak/shopcart/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Revoker answers whether a token jti was invalidated by logout. A nil
// Revoker disables the check (tests, dev without redis).
type Revoker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthMiddleware struct {
	jwt     TokenVerifier
	revoker Revoker
	header  string
}

func NewAuthMiddleware(jwt TokenVerifier, revoker Revoker, header string) *AuthMiddleware {
	if header == "" {
		// legacy storefront clients send this exact header
		header = "auth-token"
	}

	return &AuthMiddleware{jwt: jwt, revoker: revoker, header: header}
}

// RequireAuth resolves the session token to a user identity and stashes it
// on the context. Failures short-circuit with the storefront's legacy 401
// bodies; downstream handlers never run.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(m.header))

		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"errors": "Please authenticate with a valid token",
			})
			return
		}

		claims, err := m.jwt.Verify(raw)

		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"errors": "Invalid Token",
			})
			return
		}

		if m.revoker != nil {
			revoked, err := m.revoker.IsRevoked(c.Request.Context(), claims.JTI)

			// fail closed: if the revocation set is unreachable, reject
			if err != nil || revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"errors": "Invalid Token",
				})
				return
			}
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxTokenJTIKey, claims.JTI)

		if claims.ExpiresAt != nil {
			c.Set(ctxTokenExpKey, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func TokenJTIFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxTokenJTIKey)
	if !ok {
		return "", false
	}
	jti, ok := v.(string)
	return jti, ok
}

func TokenExpiryFromContext(c *gin.Context) (time.Time, bool) {
	v, ok := c.Get(ctxTokenExpKey)
	if !ok {
		return time.Time{}, false
	}
	exp, ok := v.(time.Time)
	return exp, ok
}
