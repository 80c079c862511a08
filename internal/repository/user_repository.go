package repository

import (
	"context"

	"github.com/vendorx/marketplace/internal/domain"
)

// UserRepository is the credential store used by login and signup.
type UserRepository interface {
	// FindByEmail returns ErrNotFound when no user matches. A non-nil role
	// restricts the match to that role.
	FindByEmail(ctx context.Context, email string, role *domain.Role) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Insert assigns ID and CreatedAt. Returns ErrDuplicate if the email is taken.
	Insert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type userRepository struct {
	db Pooler
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db Pooler) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, role, location, password_hash, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Location,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &user, nil
}

func roleFilter(role *domain.Role) *string {
	if role == nil {
		return nil
	}
	value := string(*role)
	return &value
}

func (r *userRepository) FindByEmail(ctx context.Context, email string, role *domain.Role) (*domain.User, error) {
	const query = `
        SELECT ` + userColumns + `
        FROM users WHERE email=$1 AND ($2::text IS NULL OR role=$2::text)`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return scanUser(pool.QueryRow(ctx, query, email, roleFilter(role)))
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *userRepository) Insert(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, role, location, password_hash)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	err = pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		string(user.Role),
		user.Location,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
	return mapPgError(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return scanUser(pool.QueryRow(ctx, query, id))
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash=$1 WHERE id=$2`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	cmd, err := pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
