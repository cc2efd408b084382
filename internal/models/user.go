// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. A user owns zero or more
// categories and zero or more notes; every query against those tables
// is scoped by the owning user's ID.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	TOTPSecret   *string   `json:"-"` // Nullable; set during optional 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasTwoFactor returns true if the user has enabled the optional TOTP
// second factor. Logins for such users require a code after the password.
func (u *User) HasTwoFactor() bool {
	return u.TOTPEnabled
}
