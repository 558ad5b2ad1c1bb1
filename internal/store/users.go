package store

import (
	"context"
	"fmt"

	"pharmacy-storefront/internal/models"
)

const userColumns = `id, username, email, first_name, last_name, password_hash, is_staff, date_joined`

// CreateUser inserts a user. A taken username yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (username, email, first_name, last_name, password_hash, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, date_joined`

	err := s.db.QueryRowxContext(ctx, query,
		u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsStaff,
	).Scan(&u.ID, &u.DateJoined)
	if err != nil {
		return conflict(err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := s.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id = $1", id); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.GetContext(ctx, &u, "SELECT "+userColumns+" FROM users WHERE username = $1", username); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// ListUsers returns users newest first
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users,
		"SELECT "+userColumns+" FROM users ORDER BY date_joined DESC, id DESC"); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users")
	return n, err
}
