package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT id, name, email, COALESCE(mobile_no, ''), role, created_at
		FROM users WHERE id = $1
	`
	var u entity.User
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.MobileNo, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListElevated returns the admins and managers for the "new lead" fan-out.
func (r *UserRepository) ListElevated(ctx context.Context) ([]*entity.User, error) {
	query := `
		SELECT id, name, email, COALESCE(mobile_no, ''), role, created_at
		FROM users WHERE role IN ($1, $2) ORDER BY name
	`
	rows, err := r.DB.QueryContext(ctx, query, entity.RoleAdmin, entity.RoleManager)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		var u entity.User
		err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.MobileNo, &u.Role, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}
