package models

import "time"

// OAuthLink binds an external provider identity to a local user. The
// (ProviderID, ProviderUserID) pair maps to at most one user.
type OAuthLink struct {
	ProviderID     string    `json:"provider_id"`
	ProviderUserID string    `json:"provider_user_id"`
	UserID         string    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}
