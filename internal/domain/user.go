package domain

import "time"

// Role gates the admin surface.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a storefront account. Accounts provisioned through the external
// identity provider arrive via sync-user and carry no local password hash.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// IsAdmin reports whether the user may reach the admin surface.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
