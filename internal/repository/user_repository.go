package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/campus-info-api/internal/models"
)

// UserRepository reads application users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID fetches a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, first_name, middle_name, last_name, display_name, role, active, created_at, updated_at
FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindFacultyByID fetches a user and ensures it holds the faculty role.
func (r *UserRepository) FindFacultyByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, first_name, middle_name, last_name, display_name, role, active, created_at, updated_at
FROM users WHERE id = $1 AND role = $2`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id, models.RoleFaculty); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByRole returns users holding the provided role.
func (r *UserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	const query = `SELECT id, email, first_name, middle_name, last_name, display_name, role, active, created_at, updated_at
FROM users WHERE role = $1 ORDER BY last_name ASC, first_name ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}
