package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the one cookie the service issues; it carries the opaque
// session id and nothing else.
const SessionCookie = "auth_session"

// CookieHelper manages the session cookie. HttpOnly and SameSite=Lax always;
// Secure in production configurations.
type CookieHelper struct {
	secure bool
}

func NewCookieHelper(secure bool) *CookieHelper {
	return &CookieHelper{secure: secure}
}

// SetSessionCookie issues the cookie with an expiry matching the session's.
func (h *CookieHelper) SetSessionCookie(c *gin.Context, sessionID string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	h.setCookie(c, sessionID, maxAge)
}

// ClearSessionCookie removes the cookie; called on logout and whenever a
// stale cookie is observed.
func (h *CookieHelper) ClearSessionCookie(c *gin.Context) {
	h.setCookie(c, "", -1)
}

// GetSessionCookie returns the cookie value, or "" if absent.
func (h *CookieHelper) GetSessionCookie(c *gin.Context) string {
	value, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return value
}

func (h *CookieHelper) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookie,
		value,
		maxAge,
		"/",
		"",
		h.secure,
		true, // httpOnly, always
	)
}
