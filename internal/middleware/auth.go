package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/handlers"
	"authcore/internal/services"
)

// RequireSession resolves the session cookie to a user on every protected
// request. Invalid cookies are cleared before the 401 so the client drops
// stale state; sliding renewals re-issue the cookie with the new expiry.
func RequireSession(sessions services.SessionService, cookies *handlers.CookieHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := cookies.GetSessionCookie(c)
		user, session, renewed, err := sessions.Validate(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, services.ErrInvalidSession) {
				cookies.ClearSessionCookie(c)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Temporarily unavailable, please retry"})
			return
		}

		if renewed {
			cookies.SetSessionCookie(c, session.ID, session.ExpiresAt)
		}

		c.Set(handlers.ContextUserKey, user)
		c.Set(handlers.ContextSessionKey, session)
		c.Next()
	}
}
