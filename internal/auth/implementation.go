// internal/auth/implementation.go
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	ErrValidation         = errors.New("invalid input")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

const uniqueViolation = "23505"

// service implements the Service interface.
type service struct {
	db            *sql.DB
	tokens        *TokenService
	registerLimit *rate.Limiter
	loginLimit    *rate.Limiter
	log           zerolog.Logger
}

// NewService creates a new authentication service instance. Register and login
// are throttled independently; exhausting one budget leaves the other intact.
func NewService(db *sql.DB, tokens *TokenService, log zerolog.Logger) Service {
	return &service{
		db:            db,
		tokens:        tokens,
		registerLimit: rate.NewLimiter(rate.Every(time.Second), 10),
		loginLimit:    rate.NewLimiter(rate.Every(time.Second), 10),
		log:           log,
	}
}

// Register creates a new account with a hashed password and the default role.
func (s *service) Register(ctx context.Context, username, password, email string) (*User, error) {
	if !s.registerLimit.Allow() {
		return nil, ErrRateLimited
	}

	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrDuplicateUser
	}

	hash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Email:        email,
		Role:         RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, password_salt, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Username, user.PasswordHash, user.PasswordSalt, user.Email, user.Role, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.log.Info().Str("username", username).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues a bearer token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if !s.loginLimit.Allow() {
		return "", ErrRateLimited
	}

	var (
		hash string
		salt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT password_hash, password_salt FROM users WHERE username = $1
	`, username).Scan(&hash, &salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.Warn().Str("username", username).Msg("login failed: unknown user")
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("query user: %w", err)
	}

	ok, err := verifyPassword(password, salt, hash)
	if err != nil {
		return "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.log.Warn().Str("username", username).Msg("login failed: password mismatch")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.log.Info().Str("username", username).Msg("login succeeded")
	return token, nil
}

// ResolvePrincipal verifies a token and re-fetches the user row so role
// changes take effect on the next request rather than at token expiry.
func (s *service) ResolvePrincipal(ctx context.Context, token string) (*Principal, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	p := &Principal{}
	err = s.db.QueryRowContext(ctx, `
		SELECT id, username, role FROM users WHERE username = $1
	`, username).Scan(&p.ID, &p.Username, &p.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	return p, nil
}
