package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BBMRI-cz/fhir-place/internal/models"
	"github.com/BBMRI-cz/fhir-place/internal/security"
	"github.com/BBMRI-cz/fhir-place/internal/service"
)

const (
	currentUserKey   = "current_user"
	sessionClaimsKey = "session_claims"
)

type SessionValidator interface {
	Validate(ctx context.Context, token string) (models.User, security.SessionClaims, error)
}

// Auth admits requests carrying a valid session, read from the session
// cookie or, for API clients, a bearer token.
func Auth(sessions SessionValidator, cookieName string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, claims, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrSessionInvalid) {
				log.Error().Err(err).
					Str("request_id", c.Writer.Header().Get(requestIDHeader)).
					Msg("session validation failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(currentUserKey, user)
		c.Set(sessionClaimsKey, claims)

		c.Next()
	}
}

func SessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(currentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

func CurrentClaims(c *gin.Context) (security.SessionClaims, bool) {
	val, exists := c.Get(sessionClaimsKey)
	if !exists {
		return security.SessionClaims{}, false
	}
	claims, ok := val.(security.SessionClaims)
	return claims, ok
}
