package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"authcore/internal/models"
)

type OAuthLinkRepository interface {
	Create(ctx context.Context, link *models.OAuthLink) error
	Get(ctx context.Context, providerID, providerUserID string) (*models.OAuthLink, error)
}

type oauthLinkRepository struct {
	DB *sql.DB
}

func NewOAuthLinkRepository(db *sql.DB) OAuthLinkRepository {
	return &oauthLinkRepository{DB: db}
}

// Create inserts the link. (provider_id, provider_user_id) is the primary
// key, so a second insert for the same identity returns ErrDuplicate.
func (r *oauthLinkRepository) Create(ctx context.Context, link *models.OAuthLink) error {
	const q = `
		INSERT INTO oauth_links (provider_id, provider_user_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.DB.QueryRowContext(ctx, q, link.ProviderID, link.ProviderUserID, link.UserID).
		Scan(&link.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create oauth link: %w", err)
	}
	return nil
}

func (r *oauthLinkRepository) Get(ctx context.Context, providerID, providerUserID string) (*models.OAuthLink, error) {
	const q = `
		SELECT provider_id, provider_user_id, user_id, created_at
		FROM oauth_links
		WHERE provider_id = $1 AND provider_user_id = $2
	`
	l := &models.OAuthLink{}
	err := r.DB.QueryRowContext(ctx, q, providerID, providerUserID).
		Scan(&l.ProviderID, &l.ProviderUserID, &l.UserID, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get oauth link: %w", err)
	}
	return l, nil
}
