package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type userRepository struct {
	*PostgresRepository
}

func NewUserRepository(db *sql.DB, logger zerolog.Logger) UserRepository {
	return &userRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, full_name, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.FullName,
		user.Email,
		user.Role,
		user.CreatedAt,
	)

	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, full_name, email, role, created_at
		FROM users
		WHERE id = $1
	`

	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, full_name, email, role, created_at
		FROM users
		WHERE email = $1
	`

	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
