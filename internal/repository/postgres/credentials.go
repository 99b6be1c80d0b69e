package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/agrimitra/agrimitra-auth/internal/model"
)

// SetPasswordHash stores the bcrypt hash for a user.
func (r *UserRepository) SetPasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, string(hash))
	if err != nil {
		return fmt.Errorf("failed to set password hash: %w", err)
	}

	return nil
}

// GetPasswordHash returns the user ID and bcrypt hash for an email.
func (r *UserRepository) GetPasswordHash(ctx context.Context, email string) (uuid.UUID, []byte, error) {
	var (
		id   uuid.UUID
		hash string
	)
	query := `SELECT id, password_hash FROM users WHERE email = $1`

	err := r.db.QueryRow(ctx, query, email).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil, model.ErrNotFound
		}
		return uuid.Nil, nil, fmt.Errorf("failed to get password hash: %w", err)
	}

	return id, []byte(hash), nil
}
