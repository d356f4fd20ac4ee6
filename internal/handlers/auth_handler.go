package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/models"
	"authcore/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
	cookies     *CookieHelper
}

func NewAuthHandler(authService services.AuthService, cookies *CookieHelper) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type OAuthLinkRequest struct {
	ProviderID     string `json:"provider_id" binding:"required"`
	ProviderUserID string `json:"provider_user_id" binding:"required"`
}

// Register godoc
// @Summary Register a new account
// @Description Creates an unverified account and emails a verification link. No session is opened.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.authService.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	log.Printf("[auth][register] user=%s created", user.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Registered, please verify your email"})
}

// Login godoc
// @Summary Log in with email and password
// @Description Verifies credentials and sets the session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}
	h.cookies.SetSessionCookie(c, session.ID, session.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the current session and clears the cookie. Idempotent.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := h.cookies.GetSessionCookie(c)
	if err := h.authService.Logout(c.Request.Context(), sessionID); err != nil {
		log.Printf("[auth][logout] revoke failed: %v", err)
	}
	h.cookies.ClearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// VerifyEmail godoc
// @Summary Verify email address
// @Description Consumes the emailed verification token. Tokens are single use.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyEmailRequest true "Verification token"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.authService.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		h.respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// ResendVerification godoc
// @Summary Resend the verification email
// @Description Issues a fresh token, invalidating any earlier verification link.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/verify-email/resend [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.authService.ResendVerification(c.Request.Context(), user.ID); err != nil {
		h.respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}

// RequestPasswordReset godoc
// @Summary Request a password reset
// @Description Always succeeds; a reset link is mailed only if the account exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body PasswordResetRequest true "Account email"
// @Success 202 {object} map[string]string
// @Router /auth/password-reset/request [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "If the account exists, a reset email has been sent"})
}

// ConfirmPasswordReset godoc
// @Summary Reset the password
// @Description Consumes the reset token, stores the new password and revokes every session.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body PasswordResetConfirmRequest true "Token and new password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated, please log in again"})
}

// LinkOAuth godoc
// @Summary Link an OAuth identity
// @Description Binds a verified provider identity to the current account.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body OAuthLinkRequest true "Provider identity"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/oauth/link [post]
func (h *AuthHandler) LinkOAuth(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var req OAuthLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.authService.LinkOAuth(c.Request.Context(), req.ProviderID, req.ProviderUserID, user.ID); err != nil {
		h.respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Identity linked"})
}

// Me godoc
// @Summary Current user
// @Description Returns the user behind the session cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// respondAuthError maps the service error taxonomy to HTTP statuses. Anything
// unexpected is logged server-side and surfaced as a retryable 503.
func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
	case errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, services.ErrAlreadyLinked):
		c.JSON(http.StatusConflict, gin.H{"error": "Identity already linked to another account"})
	default:
		log.Printf("[auth][handler] internal error: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporarily unavailable, please retry"})
	}
}
