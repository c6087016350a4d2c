package ports

import (
	"context"

	"github.com/suivipro/platform/internal/core/domain"
)

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// CreateUserInput is the admin provisioning payload. Empty RoleNames means
// the default "user" role.
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	RoleNames []string
}

// CreateUserResult reports the provisioned user and whether the welcome email
// went out. TemporaryPassword is only set when it did not.
type CreateUserResult struct {
	User              *domain.User
	EmailSent         bool
	TemporaryPassword string
}

type AdminService interface {
	CreateUser(ctx context.Context, actor domain.Principal, in CreateUserInput) (*CreateUserResult, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Principal, userID string) error
	UpdateUserRoles(ctx context.Context, actor domain.Principal, userID string, roleNames []string) (*domain.User, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
	UpdateRolePermissions(ctx context.Context, actor domain.Principal, roleID string, perms domain.Permissions) (*domain.Role, error)
}

// AdminSeed describes the default administrator created on first start. An
// empty Password means a temporary one is generated.
type AdminSeed struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}
