package entity

import "time"

// SessionUser mirrors the public fields of a User. It is what a session token
// asserts and what clients cache locally.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is a verified token: the identity plus its validity window.
type Session struct {
	User      SessionUser `json:"user"`
	IssuedAt  time.Time   `json:"issuedAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}
