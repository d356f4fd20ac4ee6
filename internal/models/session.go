package models

import "time"

// Session is the server-side record behind the auth cookie. The ID doubles as
// the cookie value, so it is generated from crypto/rand and never derived from
// user data.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CeilingAt returns the absolute expiry a session may never outlive,
// regardless of sliding renewals.
func (s *Session) CeilingAt(maxLifetime time.Duration) time.Time {
	return s.CreatedAt.Add(maxLifetime)
}
