package services

import "errors"

// Error taxonomy crossing the HTTP boundary. Security-relevant distinctions
// (unknown email vs wrong password, expired vs forged token) are deliberately
// collapsed before they leave the service layer; the detail is only logged.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidSession     = errors.New("invalid session")
	ErrAlreadyLinked      = errors.New("identity already linked to another account")
)
