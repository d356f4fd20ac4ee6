package routes

import (
	"github.com/gin-gonic/gin"

	"authcore/internal/handlers"
)

// SetupRoutes wires the auth endpoints. requireSession guards everything that
// needs an authenticated caller; token-bearing flows stay public since the
// token itself is the credential.
func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	requireSession gin.HandlerFunc,
) {
	router.GET("/healthz", healthHandler.Check)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/verify-email", authHandler.VerifyEmail)
	auth.POST("/verify-email/resend", requireSession, authHandler.ResendVerification)
	auth.POST("/password-reset/request", authHandler.RequestPasswordReset)
	auth.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)
	auth.POST("/oauth/link", requireSession, authHandler.LinkOAuth)

	v1.GET("/me", requireSession, authHandler.Me)
}
