package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/store"
)

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
		SELECT id, email, name, password_hash, role, created_at
		FROM   users
		WHERE  email = ?`
	return s.getUser(ctx, q, email)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
		SELECT id, email, name, password_hash, role, created_at
		FROM   users
		WHERE  id = ?`
	return s.getUser(ctx, q, id)
}

func (s *Store) getUser(ctx context.Context, q string, arg any) (*domain.User, error) {
	var (
		u         domain.User
		role      string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get user: %w", err)
	}

	u.Role = domain.Role(role)
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	const q = `
		INSERT INTO users (id, email, name, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, q,
		u.ID, u.Email, u.Name, u.PasswordHash, string(u.Role), formatTime(u.CreatedAt),
	)
	if err := mapConstraintErr(err); err != nil {
		if err == store.ErrDuplicate {
			return err
		}
		return fmt.Errorf("sqlite: create user %q: %w", u.Email, err)
	}
	return nil
}

// UpsertUserByEmail creates the account or refreshes the display name of an
// existing one, returning the stored row.
func (s *Store) UpsertUserByEmail(ctx context.Context, u *domain.User) (*domain.User, error) {
	existing, err := s.GetUserByEmail(ctx, u.Email)
	if err == store.ErrNotFound {
		if err := s.CreateUser(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	}
	if err != nil {
		return nil, err
	}

	if u.Name != "" && u.Name != existing.Name {
		_, err := s.db.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, u.Name, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("sqlite: update user name %q: %w", existing.ID, err)
		}
		existing.Name = u.Name
	}
	return existing, nil
}
