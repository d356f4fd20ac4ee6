package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"authcore/internal/models"
	"authcore/internal/repositories"
)

// AuthService orchestrates registration, credential login, token flows and
// oauth linking. It is the only thing the HTTP layer talks to besides the
// session middleware.
type AuthService interface {
	Register(ctx context.Context, fullName, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *models.Session, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, userID string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Logout(ctx context.Context, sessionID string) error
	LinkOAuth(ctx context.Context, providerID, providerUserID, userID string) error
}

// AuthPolicy holds the knobs that are policy, not code: minimum password
// length and whether login is gated on a verified email.
type AuthPolicy struct {
	MinPasswordLength    int
	RequireVerifiedEmail bool
}

type authService struct {
	users    repositories.UserRepository
	oauth    repositories.OAuthLinkRepository
	tokens   TokenService
	sessions SessionService
	hasher   PasswordHasher
	emails   EmailService
	policy   AuthPolicy
}

func NewAuthService(
	users repositories.UserRepository,
	oauth repositories.OAuthLinkRepository,
	tokens TokenService,
	sessions SessionService,
	hasher PasswordHasher,
	emails EmailService,
	policy AuthPolicy,
) AuthService {
	return &authService{
		users:    users,
		oauth:    oauth,
		tokens:   tokens,
		sessions: sessions,
		hasher:   hasher,
		emails:   emails,
		policy:   policy,
	}
}

// Register creates the account unverified and mails a verification token. No
// session is created; the user lands on the verify-email step first.
func (s *authService) Register(ctx context.Context, fullName, email, password string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)
	if fullName == "" || email == "" {
		return nil, fmt.Errorf("%w: full name and email are required", ErrValidation)
	}
	if err := s.checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, user.ID, models.TokenKindEmailVerification)
	if err != nil {
		return nil, err
	}
	if err := s.emails.SendVerificationEmail(user.Email, token.Value); err != nil {
		// account exists and the token is valid; the user can ask for a resend
		log.Printf("[auth][register] failed to send verification email to user=%s: %v", user.ID, err)
	}
	return user, nil
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("[auth][login] unknown email")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		log.Printf("[auth][login] password mismatch for user=%s", user.ID)
		return nil, nil, ErrInvalidCredentials
	}
	if s.policy.RequireVerifiedEmail && !user.EmailVerified {
		return nil, nil, ErrEmailNotVerified
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	_, err := s.tokens.ConsumeVerifyEmail(ctx, strings.TrimSpace(token))
	return err
}

// ResendVerification issues a fresh token, invalidating the link in any
// earlier email, and sends it again.
func (s *authService) ResendVerification(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return fmt.Errorf("%w: email already verified", ErrValidation)
	}
	token, err := s.tokens.Issue(ctx, user.ID, models.TokenKindEmailVerification)
	if err != nil {
		return err
	}
	return s.emails.SendVerificationEmail(user.Email, token.Value)
}

// RequestPasswordReset always reports success so callers cannot probe which
// emails are registered. The token is only issued when the account exists.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		log.Printf("[auth][password-reset] request for unknown email")
		return nil
	}

	token, err := s.tokens.Issue(ctx, user.ID, models.TokenKindPasswordReset)
	if err != nil {
		return err
	}
	if err := s.emails.SendPasswordResetEmail(user.Email, token.Value); err != nil {
		log.Printf("[auth][password-reset] failed to send email to user=%s: %v", user.ID, err)
	}
	return nil
}

// ResetPassword consumes the token and stores the new hash in one durable
// write, then revokes every session the user had.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	userID, err := s.tokens.ConsumeResetPassword(ctx, token, hash)
	if err != nil {
		return err
	}
	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		return err
	}
	log.Printf("[auth][password-reset] completed for user=%s, all sessions revoked", userID)
	return nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// LinkOAuth persists the provider identity mapping. Linking the same identity
// to the same user twice is a no-op; to a different user, ErrAlreadyLinked.
func (s *authService) LinkOAuth(ctx context.Context, providerID, providerUserID, userID string) error {
	providerID = strings.TrimSpace(providerID)
	providerUserID = strings.TrimSpace(providerUserID)
	if providerID == "" || providerUserID == "" {
		return fmt.Errorf("%w: provider identity is required", ErrValidation)
	}

	link := &models.OAuthLink{
		ProviderID:     providerID,
		ProviderUserID: providerUserID,
		UserID:         userID,
	}
	err := s.oauth.Create(ctx, link)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrDuplicate) {
		return err
	}
	existing, getErr := s.oauth.Get(ctx, providerID, providerUserID)
	if getErr != nil {
		return getErr
	}
	if existing.UserID == userID {
		return nil
	}
	return ErrAlreadyLinked
}

func (s *authService) checkPassword(password string) error {
	if len(password) < s.policy.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, s.policy.MinPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
