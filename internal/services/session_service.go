package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"authcore/internal/models"
	"authcore/internal/repositories"
	"authcore/internal/utils"
)

// SessionConfig carries the lifetime policy. TTL is the sliding window,
// MaxLifetime the absolute ceiling measured from creation, RefreshWindow the
// tail of the TTL inside which validation extends the session.
type SessionConfig struct {
	TTL           time.Duration
	MaxLifetime   time.Duration
	RefreshWindow time.Duration
}

// SessionService owns the session lifecycle. Session ids double as cookie
// values: 32 bytes of CSPRNG output, nothing derived from the user.
type SessionService interface {
	Create(ctx context.Context, userID string) (*models.Session, error)
	// Validate resolves the session id to its user. The renewed flag tells
	// the caller to re-issue the cookie with the extended expiry. Expired,
	// revoked and unknown ids all come back as ErrInvalidSession.
	Validate(ctx context.Context, id string) (user *models.User, session *models.Session, renewed bool, err error)
	Revoke(ctx context.Context, id string) error
	RevokeAll(ctx context.Context, userID string) error
}

type sessionService struct {
	repo     repositories.SessionRepository
	userRepo repositories.UserRepository
	cache    *SessionCache
	cfg      SessionConfig
}

func NewSessionService(repo repositories.SessionRepository, userRepo repositories.UserRepository, cache *SessionCache, cfg SessionConfig) SessionService {
	return &sessionService{
		repo:     repo,
		userRepo: userRepo,
		cache:    cache,
		cfg:      cfg,
	}
}

func (s *sessionService) Create(ctx context.Context, userID string) (*models.Session, error) {
	id, err := utils.NewToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	session := &models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.cfg.TTL),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	s.cache.Set(ctx, session)
	return session, nil
}

func (s *sessionService) Validate(ctx context.Context, id string) (*models.User, *models.Session, bool, error) {
	if id == "" {
		return nil, nil, false, ErrInvalidSession
	}

	session := s.cache.Get(ctx, id)
	if session == nil {
		stored, err := s.repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, false, ErrInvalidSession
			}
			return nil, nil, false, err
		}
		session = stored
	}

	now := time.Now()
	ceiling := session.CeilingAt(s.cfg.MaxLifetime)
	if now.After(session.ExpiresAt) || now.After(ceiling) {
		s.drop(ctx, session)
		return nil, nil, false, ErrInvalidSession
	}

	renewed := false
	if session.ExpiresAt.Sub(now) <= s.cfg.RefreshWindow {
		renewed = s.renew(ctx, session, now, ceiling)
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.drop(ctx, session)
			return nil, nil, false, ErrInvalidSession
		}
		return nil, nil, false, err
	}
	return user, session, renewed, nil
}

// renew extends the sliding window, clamped to the ceiling. A renewal that
// would not move the expiry forward is skipped; a failed write is logged and
// the still-valid session served, since the store copy only expires sooner.
func (s *sessionService) renew(ctx context.Context, session *models.Session, now, ceiling time.Time) bool {
	newExpiry := now.Add(s.cfg.TTL)
	if newExpiry.After(ceiling) {
		newExpiry = ceiling
	}
	if !newExpiry.After(session.ExpiresAt) {
		return false
	}
	if err := s.repo.UpdateExpiry(ctx, session.ID, newExpiry); err != nil {
		log.Printf("[session][renew] failed for session user=%s: %v", session.UserID, err)
		return false
	}
	session.ExpiresAt = newExpiry
	s.cache.Set(ctx, session)
	return true
}

// Revoke deletes the session. Unknown or already-revoked ids are not an
// error: logout is idempotent.
func (s *sessionService) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	session := s.cache.Get(ctx, id)
	if session == nil {
		stored, err := s.repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil
			}
			return err
		}
		session = stored
	}
	s.drop(ctx, session)
	return nil
}

// RevokeAll deletes every session for the user. Called on password change so
// a compromised password never leaves old sessions usable.
func (s *sessionService) RevokeAll(ctx context.Context, userID string) error {
	if err := s.repo.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	s.cache.DelAllForUser(ctx, userID)
	return nil
}

func (s *sessionService) drop(ctx context.Context, session *models.Session) {
	if err := s.repo.Delete(ctx, session.ID); err != nil {
		log.Printf("[session][drop] failed for session user=%s: %v", session.UserID, err)
	}
	s.cache.Del(ctx, session)
}
