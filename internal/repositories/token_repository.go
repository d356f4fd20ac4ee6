package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"authcore/internal/models"
)

type TokenRepository interface {
	// Upsert writes the token, replacing any previous token of the same
	// kind for the user in a single conditional write. This is what keeps
	// "at most one live token per (user, kind)" true across concurrent
	// requests and across process instances.
	Upsert(ctx context.Context, token *models.Token) error

	// ConsumeVerifyEmail marks the token consumed and flips the user's
	// email_verified flag in one transaction. Returns ErrNotFound if the
	// token is unknown, expired, or already consumed.
	ConsumeVerifyEmail(ctx context.Context, value string) (userID string, err error)

	// ConsumeResetPassword marks the token consumed and stores the new
	// password hash in one transaction, so a crash can never burn the
	// token without applying the password change.
	ConsumeResetPassword(ctx context.Context, value, passwordHash string) (userID string, err error)

	// GetForUser reads the current token row for (user, kind); used by
	// tests and diagnostics, never to authorize anything.
	GetForUser(ctx context.Context, userID string, kind models.TokenKind) (*models.Token, error)
}

type tokenRepository struct {
	DB *sql.DB
}

func NewTokenRepository(db *sql.DB) TokenRepository {
	return &tokenRepository{DB: db}
}

func (r *tokenRepository) Upsert(ctx context.Context, token *models.Token) error {
	const q = `
		INSERT INTO auth_tokens (user_id, kind, token, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, kind) DO UPDATE
		SET token = EXCLUDED.token,
		    expires_at = EXCLUDED.expires_at,
		    consumed_at = NULL,
		    created_at = NOW()
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, q, token.UserID, token.Kind, token.Value, token.ExpiresAt).
		Scan(&token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to issue %s token: %w", token.Kind, err)
	}
	return nil
}

func (r *tokenRepository) ConsumeVerifyEmail(ctx context.Context, value string) (string, error) {
	return r.consumeWithEffect(ctx, value, models.TokenKindEmailVerification,
		`UPDATE users SET email_verified = TRUE WHERE id = $1`)
}

func (r *tokenRepository) ConsumeResetPassword(ctx context.Context, value, passwordHash string) (string, error) {
	return r.consumeWithEffect(ctx, value, models.TokenKindPasswordReset,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, passwordHash)
}

// consumeWithEffect runs the single-use CAS consume and the dependent user
// update in one transaction. The consume matches only unconsumed, unexpired
// rows, so a replayed token loses the race and gets ErrNotFound.
func (r *tokenRepository) consumeWithEffect(ctx context.Context, value string, kind models.TokenKind, effect string, effectArgs ...any) (string, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin token consume: %w", err)
	}
	defer tx.Rollback()

	const consume = `
		UPDATE auth_tokens
		SET consumed_at = NOW()
		WHERE token = $1 AND kind = $2 AND consumed_at IS NULL AND expires_at > NOW()
		RETURNING user_id
	`
	var userID string
	if err := tx.QueryRowContext(ctx, consume, value, kind).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to consume %s token: %w", kind, err)
	}

	args := append([]any{userID}, effectArgs...)
	if _, err := tx.ExecContext(ctx, effect, args...); err != nil {
		return "", fmt.Errorf("failed to apply %s effect: %w", kind, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit token consume: %w", err)
	}
	return userID, nil
}

func (r *tokenRepository) GetForUser(ctx context.Context, userID string, kind models.TokenKind) (*models.Token, error) {
	const q = `
		SELECT user_id, kind, token, expires_at, consumed_at, created_at
		FROM auth_tokens
		WHERE user_id = $1 AND kind = $2
	`
	t := &models.Token{}
	var consumedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, q, userID, kind).
		Scan(&t.UserID, &t.Kind, &t.Value, &t.ExpiresAt, &consumedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s token: %w", kind, err)
	}
	if consumedAt.Valid {
		t.ConsumedAt = &consumedAt.Time
	}
	return t, nil
}
