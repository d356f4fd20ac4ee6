package handlers

import (
	"github.com/gin-gonic/gin"

	"authcore/internal/models"
)

// Context keys set by the session middleware.
const (
	ContextUserKey    = "user"
	ContextSessionKey = "session"
)

func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func currentSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*models.Session)
	return session, ok
}
