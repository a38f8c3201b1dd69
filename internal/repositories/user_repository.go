package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/nexmeet/backend/internal/apperrors"
	"github.com/nexmeet/backend/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `
	INSERT INTO users (id, email, name, password_hash, avatar, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	RETURNING created_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Avatar,
	).Scan(&user.CreatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
	SELECT id, email, name, password_hash, avatar, refresh_token, created_at
	FROM users
	WHERE email = $1
	LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const query = `
	SELECT id, email, name, password_hash, avatar, refresh_token, created_at
	FROM users
	WHERE id = $1
	LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// UpdateRefreshToken rotates the stored refresh token for a user.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	const query = `
	UPDATE users
	SET refresh_token = $1
	WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, token, id)
	return err
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var user models.User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Avatar,
		&user.RefreshToken,
		&user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
