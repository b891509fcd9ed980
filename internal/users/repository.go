// Package users provides read access to the user directory used for
// notification fan-out and lead assignment. Authentication and user
// management live in the external identity service.
package users

import (
	"context"
	"fmt"
	"time"

	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opListActiveByRoles = "users.repository.list_active_by_roles"
	opGetByID           = "users.repository.get_by_id"

	errRepoNotConfigured = "users repository not configured"
)

// Roles recognized by the notification fan-out.
const (
	RoleAdmin  = "Admin"
	RoleLead   = "Lead"
	RoleMember = "Member"
)

// StatusActive marks users eligible for notifications and assignment.
const StatusActive = "Active"

// User is a directory entry.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository reads the user directory.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListActiveByRoles returns all active users whose role is in the given set.
func (r *Repository) ListActiveByRoles(ctx context.Context, roles []string) ([]User, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListActiveByRoles)
	}
	if len(roles) == 0 {
		return []User{}, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, role, status, created_at
		FROM users
		WHERE status = $1 AND role = ANY($2)
		ORDER BY created_at
	`, StatusActive, roles)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list active users failed: %v", err)).WithOp(opListActiveByRoles)
	}
	defer rows.Close()

	items := make([]User, 0)
	for rows.Next() {
		var u User
		if scanErr := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.CreatedAt); scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan users failed: %v", scanErr)).WithOp(opListActiveByRoles)
		}
		items = append(items, u)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate users failed: %v", rowsErr)).WithOp(opListActiveByRoles)
	}

	return items, nil
}

// GetByID returns a single user.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	if r == nil || r.pool == nil {
		return User{}, apperr.Internal(errRepoNotConfigured).WithOp(opGetByID)
	}
	if id == uuid.Nil {
		return User{}, apperr.Validation("userId is required").WithOp(opGetByID)
	}

	var u User
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, role, status, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return User{}, apperr.NotFound("user not found").WithOp(opGetByID)
		}
		return User{}, apperr.Internal(fmt.Sprintf("get user failed: %v", err)).WithOp(opGetByID)
	}

	return u, nil
}
