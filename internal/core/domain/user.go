package domain

import (
	"strings"
	"time"
)

// AccessLevel is the privilege a route requires from an authenticated caller.
type AccessLevel int

const (
	AccessUser AccessLevel = iota
	AccessAdmin
)

// User models an account holder. PasswordHash is never serialised.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	IsLocked     bool      `json:"isLocked"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the resolved caller attached to an authenticated request.
type Identity struct {
	UserID   string
	Name     string
	Email    string
	IsAdmin  bool
	IsLocked bool
}

// IdentityOf projects the request-scoped view of u.
func IdentityOf(u *User) *Identity {
	return &Identity{
		UserID:   u.ID,
		Name:     u.Name,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
		IsLocked: u.IsLocked,
	}
}

// NormalizeEmail returns the canonical storage form of an email address.
// Lookups and the unique index both operate on this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
