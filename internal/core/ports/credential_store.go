package ports

import (
	"context"

	"github.com/suivipro/platform/internal/core/domain"
)

// UserRepository persists users and their role associations. Uniqueness of
// username and email is enforced by the store and reported as
// domain.ErrUserExists.
type UserRepository interface {
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// Create inserts user and links it to the named roles in one transaction.
	Create(ctx context.Context, user *domain.User, roleNames []string) (*domain.User, error)
	// Update writes the mutable columns of user: names, flags, hash, last login.
	Update(ctx context.Context, user *domain.User) error
	// SetRoles replaces the user's role set with the named roles.
	SetRoles(ctx context.Context, userID string, roleNames []string) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// RoleRepository persists roles. Roles are only created by seeding.
type RoleRepository interface {
	List(ctx context.Context) ([]domain.Role, error)
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	UpdatePermissions(ctx context.Context, id string, perms domain.Permissions) (*domain.Role, error)
}
