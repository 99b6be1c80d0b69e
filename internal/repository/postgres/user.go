package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/agrimitra/agrimitra-auth/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, email, name, phone, location, land_size, experience, language, crops, avatar_url, agri_creds, join_date`

func scanUser(row pgx.Row) (model.UserProfile, error) {
	var user model.UserProfile
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Phone, &user.Location, &user.LandSize,
		&user.Experience, &user.Language, &user.Crops, &user.Avatar, &user.AgriCreds, &user.JoinDate,
	)
	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserProfile{}, model.ErrNotFound
		}
		return model.UserProfile{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (model.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserProfile{}, model.ErrNotFound
		}
		return model.UserProfile{}, fmt.Errorf("failed to get user by phone: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserProfile{}, model.ErrNotFound
		}
		return model.UserProfile{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.UserProfile) (model.UserProfile, error) {
	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			  RETURNING ` + userColumns

	savedUser, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.Name, user.Phone, user.Location, user.LandSize,
		user.Experience, user.Language, user.Crops, user.Avatar, user.AgriCreds, user.JoinDate,
	))
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) Update(ctx context.Context, user model.UserProfile) (model.UserProfile, error) {
	query := `UPDATE users
			  SET name = $2, phone = $3, location = $4, land_size = $5, experience = $6,
			      language = $7, crops = $8, avatar_url = $9, agri_creds = $10
			  WHERE id = $1
			  RETURNING ` + userColumns

	savedUser, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Name, user.Phone, user.Location, user.LandSize,
		user.Experience, user.Language, user.Crops, user.Avatar, user.AgriCreds,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserProfile{}, model.ErrNotFound
		}
		return model.UserProfile{}, fmt.Errorf("failed to update user: %w", err)
	}

	return savedUser, nil
}
