package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ingest-backend/internal/shared/auth"
	"ingest-backend/internal/shared/server/respond"
)

const (
	userIDKey  = "userId"
	sessionKey = "session"
)

// Auth rejects requests without a session before any handler reads the body.
func Auth(resolver auth.SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		session, err := resolver.Resolve(c.Request)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Set(sessionKey, session)
		c.Set(userIDKey, session.UserID)
		c.Next()
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

// SessionFromContext fetches the session set by the auth middleware.
func SessionFromContext(c *gin.Context) (auth.Session, bool) {
	if c == nil {
		return auth.Session{}, false
	}
	val, ok := c.Get(sessionKey)
	if !ok {
		return auth.Session{}, false
	}
	session, ok := val.(auth.Session)
	return session, ok
}
