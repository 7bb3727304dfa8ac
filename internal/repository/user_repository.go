package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"answerhub/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	q DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(q DBTX) *UserRepository {
	return &UserRepository{q: q}
}

const userColumns = `id, email, password_hash, display_name, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, display_name, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	return r.q.QueryRow(
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

// GetByID retrieves a user, returning nil when absent
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetByEmail retrieves a user by email, returning nil when absent
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.q.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
