// internal/auth/service.go
package auth

import (
	"context"
)

// Service defines the interface for registration, login and principal
// resolution.
type Service interface {
	Register(ctx context.Context, username, password, email string) (*User, error)
	Login(ctx context.Context, username, password string) (string, error)
	ResolvePrincipal(ctx context.Context, token string) (*Principal, error)
}
