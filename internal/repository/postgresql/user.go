package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sitecrew/workforce-backend-go/internal/domain/user"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/database"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/validator"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

// GetByID implements user.UserRepository.
func (u *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, u.db)

	query := `SELECT id, email, created_at, updated_at FROM users WHERE id = $1`

	var usr user.User
	err := q.QueryRow(ctx, query, id).Scan(&usr.ID, &usr.Email, &usr.CreatedAt, &usr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user with id %s: %w", id, err)
	}
	return usr, nil
}

// GetByNormalizedEmail implements user.UserRepository.
func (u *userRepositoryImpl) GetByNormalizedEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, u.db)

	normalized := validator.NormalizeEmail(email)
	if normalized == "" {
		return user.User{}, user.ErrUserNotFound
	}

	query := `
		SELECT id, email, created_at, updated_at
		FROM users
		WHERE LOWER(TRIM(email)) = $1
	`

	var usr user.User
	err := q.QueryRow(ctx, query, normalized).Scan(&usr.ID, &usr.Email, &usr.CreatedAt, &usr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return usr, nil
}
