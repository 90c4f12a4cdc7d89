// internal/auth/domain.go
package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of access levels.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is a stored account. The hash and salt never serialize.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	PasswordSalt string    `json:"-"`
	Email        string    `json:"email,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated caller attached to a request context. It is
// a deliberately small claims value, decoupled from the User row, so handlers
// never carry a persistence entity as their security context.
type Principal struct {
	ID       uuid.UUID
	Username string
	Role     Role
}
