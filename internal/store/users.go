package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
)

// CreateUser inserts a new account. A taken username or email yields
// model.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u model.User) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		u.ID, u.Username, u.Email, u.PasswordHash, toUnixNano(u.CreatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("create user: %w", model.ErrDuplicate)
	}
	return err
}

// GetUserByEmail looks up an account by its normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var (
		u         model.User
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`),
		model.NormalizeEmail(email),
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = fromUnixNano(createdAt)
	return &u, nil
}
