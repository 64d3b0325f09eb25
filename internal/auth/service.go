// Package auth issues and verifies the storefront's bearer tokens and
// bridges accounts created through the external identity provider into the
// local user table.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/store"
)

// ErrInvalidCredentials covers both unknown email and wrong password so the
// login response does not leak which one it was.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service handles login, current-user lookup and identity-provider sync.
type Service struct {
	users    store.UserRepository
	maker    Maker
	verifier IdentityVerifier
	tokenTTL time.Duration
}

func NewService(users store.UserRepository, maker Maker, verifier IdentityVerifier, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		maker:    maker,
		verifier: verifier,
		tokenTTL: tokenTTL,
	}
}

// Login checks the password and returns a fresh bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err == store.ErrNotFound {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("auth: lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := s.maker.CreateToken(user, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("auth: create token: %w", err)
	}
	return token, user, nil
}

// CurrentUser resolves the account behind a verified token payload.
func (s *Service) CurrentUser(ctx context.Context, payload *Payload) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, payload.UserID)
	if err == store.ErrNotFound {
		return nil, ErrInvalidCredentials
	}
	return user, err
}

// SyncUser provisions (or refreshes) the local account after a signup with
// the external identity provider: the provider's ID token is verified, the
// user row is upserted by email, and a storefront token is returned so the
// client is logged in immediately.
func (s *Service) SyncUser(ctx context.Context, idToken, name string) (string, *domain.User, error) {
	email, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", nil, err
	}

	user, err := s.users.UpsertUserByEmail(ctx, &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      domain.RoleUser,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", nil, fmt.Errorf("auth: sync user: %w", err)
	}

	token, _, err := s.maker.CreateToken(user, s.tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("auth: create token: %w", err)
	}
	return token, user, nil
}

// HashPassword is used by seeding and account-creation paths.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}
