package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authcore/internal/models"
	"authcore/internal/repositories"
	"authcore/internal/utils"
)

// TokenService issues and consumes single-use verification tokens. Issuing a
// new token supersedes any unconsumed token of the same kind for the user, so
// links in old emails stop working the moment a fresh one is requested.
type TokenService interface {
	Issue(ctx context.Context, userID string, kind models.TokenKind) (*models.Token, error)
	ConsumeVerifyEmail(ctx context.Context, value string) (userID string, err error)
	ConsumeResetPassword(ctx context.Context, value, passwordHash string) (userID string, err error)
}

type tokenService struct {
	repo                  repositories.TokenRepository
	verificationTokenTTL  time.Duration
	passwordResetTokenTTL time.Duration
}

func NewTokenService(repo repositories.TokenRepository, verificationTTL, resetTTL time.Duration) TokenService {
	return &tokenService{
		repo:                  repo,
		verificationTokenTTL:  verificationTTL,
		passwordResetTokenTTL: resetTTL,
	}
}

func (s *tokenService) Issue(ctx context.Context, userID string, kind models.TokenKind) (*models.Token, error) {
	value, err := utils.NewToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	token := &models.Token{
		UserID:    userID,
		Kind:      kind,
		Value:     value,
		ExpiresAt: time.Now().Add(s.ttlFor(kind)),
	}
	if err := s.repo.Upsert(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *tokenService) ConsumeVerifyEmail(ctx context.Context, value string) (string, error) {
	userID, err := s.repo.ConsumeVerifyEmail(ctx, value)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return userID, nil
}

func (s *tokenService) ConsumeResetPassword(ctx context.Context, value, passwordHash string) (string, error) {
	userID, err := s.repo.ConsumeResetPassword(ctx, value, passwordHash)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return userID, nil
}

func (s *tokenService) ttlFor(kind models.TokenKind) time.Duration {
	if kind == models.TokenKindPasswordReset {
		return s.passwordResetTokenTTL
	}
	return s.verificationTokenTTL
}
