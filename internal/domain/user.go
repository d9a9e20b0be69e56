package domain

import "time"

// UserStatus represents the user's account status.
type UserStatus string

const (
	// UserStatusActive indicates the user can sign in and use the system.
	UserStatusActive UserStatus = "active"
	// UserStatusUnconfirmed indicates the user signed up but hasn't redeemed
	// their email confirmation token yet. Sign-in fails until they do.
	UserStatusUnconfirmed UserStatus = "unconfirmed"
)

// User represents an authenticated user account in the system.
type User struct {
	Entity
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string     `json:"display_name"`
	Status       UserStatus `json:"status,omitempty"` // active or unconfirmed (empty = active)
	ConfirmToken string     `json:"-"`                // Single-use email confirmation token, cleared on confirm
	LastLoginAt  time.Time  `json:"last_login_at"`
}

// IsActive returns true if the user can sign in and use the system.
// Empty status is treated as active so rows from before the confirmation
// flow existed keep working.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}

// IsUnconfirmed returns true if the user still needs to confirm their email.
func (u *User) IsUnconfirmed() bool {
	return u.Status == UserStatusUnconfirmed
}

// Name returns the best available name to display for the user.
// Prefers DisplayName, falls back to email.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
