package models

import "time"

// TokenKind selects the flow a single-use token authorizes.
type TokenKind string

const (
	TokenKindEmailVerification TokenKind = "email_verification"
	TokenKindPasswordReset     TokenKind = "password_reset"
)

// Token is a single-use, expiring credential mailed to the user. At most one
// unconsumed token per (user, kind) exists at any time: issuing a new one
// replaces the previous row.
type Token struct {
	UserID     string     `json:"user_id"`
	Kind       TokenKind  `json:"kind"`
	Value      string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
