package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/davilat/bus-inventory/internal/model"
)

// CreateUser inserts an operator account. On success the user's ID is
// populated. A duplicate email maps to ErrEmailTaken.
func (s *SQLStore) CreateUser(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (email, password_hash, role) VALUES (?, ?, ?)`
	res, err := s.q.ExecContext(ctx, q, u.Email, u.PasswordHash, u.Role)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return ErrEmailTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// UserByEmail retrieves a user by its unique email.
func (s *SQLStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT id, email, password_hash, role, is_active, created_at, updated_at
	           FROM users WHERE email = ?`
	var u model.User
	err := s.q.QueryRowContext(ctx, q, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UserByID retrieves a user by primary key.
func (s *SQLStore) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, email, password_hash, role, is_active, created_at, updated_at
	           FROM users WHERE id = ?`
	var u model.User
	err := s.q.QueryRowContext(ctx, q, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// CreateRefreshToken stores the hash of a newly issued refresh token.
func (s *SQLStore) CreateRefreshToken(ctx context.Context, t *model.RefreshToken) error {
	const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
	res, err := s.q.ExecContext(ctx, q, t.UserID, t.TokenHash, t.ExpiresAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// RefreshTokenByHash retrieves a non-revoked refresh token by its hash.
func (s *SQLStore) RefreshTokenByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	const q = `SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
	           FROM refresh_tokens WHERE token_hash = ? AND revoked_at IS NULL`
	var t model.RefreshToken
	err := s.q.QueryRowContext(ctx, q, hash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.RevokedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

// RevokeRefreshToken marks a refresh token as revoked.
func (s *SQLStore) RevokeRefreshToken(ctx context.Context, id uint64) error {
	const q = `UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE id = ? AND revoked_at IS NULL`
	res, err := s.q.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTokenNotFound
	}
	return nil
}
