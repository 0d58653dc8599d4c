package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/diagnosia-api/internal/models"
	"github.com/harentsoaR/diagnosia-api/internal/utils"
	"github.com/rs/zerolog"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "token"

const claimsKey = "sessionClaims"

// TokenVerifier checks a session token and returns its identity.
type TokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// UserFinder looks a user up by email.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// RequireSession rejects requests without a valid session cookie.
func RequireSession(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin must run after RequireSession. The role is read from the
// store on every request so a revoked admin loses access immediately.
func RequireAdmin(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized access"})
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("look up caller role")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify permissions"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden access"})
			return
		}

		c.Next()
	}
}

// Claims returns the identity RequireSession stored on c.
func Claims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok && claims != nil
}
