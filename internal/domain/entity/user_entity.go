package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the credential store.
// PasswordHash holds the verifier derived from password and normalized email,
// never the plaintext password.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail is the lookup key for users: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Public strips everything a client must not see.
func (u *User) Public() SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
