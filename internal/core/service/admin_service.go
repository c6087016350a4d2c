package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/suivipro/platform/internal/core/domain"
	"github.com/suivipro/platform/internal/core/ports"
)

// AdminService implements user and role management. Callers are expected to
// have passed the admin role gate already.
type AdminService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	notifier ports.Notifier
	audit    ports.AuditSink
	cost     int
	log      zerolog.Logger
	now      func() time.Time
}

func NewAdminService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	notifier ports.Notifier,
	audit ports.AuditSink,
	bcryptCost int,
	log zerolog.Logger,
) *AdminService {
	if audit == nil {
		audit = nopAudit{}
	}
	return &AdminService{
		users:    users,
		roles:    roles,
		notifier: notifier,
		audit:    audit,
		cost:     normalizeCost(bcryptCost),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser provisions an account with a temporary password. When the
// welcome email cannot be sent the password is returned to the caller.
func (s *AdminService) CreateUser(ctx context.Context, actor domain.Principal, in ports.CreateUserInput) (*ports.CreateUserResult, error) {
	username := strings.TrimSpace(in.Username)
	email := domain.NormalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)

	roleNames := in.RoleNames
	if len(roleNames) == 0 {
		roleNames = []string{domain.RoleUser}
	}
	roleNames, roleProblems := checkRoleNames(roleNames)

	problems := append(identityProblems(username, email, firstName, lastName), roleProblems...)
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	if err := ensureAvailable(ctx, s.users, username, email); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	tempPassword, err := domain.GenerateTempPassword()
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	hash, err := hashPassword(tempPassword, s.cost)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:                 uuid.NewString(),
		Username:           username,
		Email:              email,
		PasswordHash:       hash,
		FirstName:          firstName,
		LastName:           lastName,
		IsActive:           true,
		MustChangePassword: true,
		CreatedBy:          actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.users.Create(ctx, user, roleNames)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	result := &ports.CreateUserResult{User: created}
	res := s.notifier.SendWelcome(ctx, created, tempPassword)
	result.EmailSent = res.Sent
	if !res.Sent {
		s.log.Warn().Err(res.Err).Str("user_id", created.ID).Msg("welcome email not sent, returning credentials to admin")
		result.TemporaryPassword = tempPassword
	}

	s.audit.Publish(domain.AuditEvent{
		Action:    domain.AuditUserCreated,
		ActorID:   actor.ID,
		SubjectID: created.ID,
		At:        now,
		Details:   map[string]any{"roles": roleNames, "emailSent": res.Sent},
	})
	s.log.Info().
		Str("user_id", created.ID).
		Str("created_by", actor.ID).
		Strs("roles", roleNames).
		Bool("email_sent", res.Sent).
		Msg("user provisioned")

	return result, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, actor domain.Principal, userID string) error {
	if userID == actor.ID {
		return domain.ErrSelfDeletion
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.audit.Publish(domain.AuditEvent{
		Action:    domain.AuditUserDeleted,
		ActorID:   actor.ID,
		SubjectID: userID,
		At:        s.now(),
	})
	s.log.Info().Str("user_id", userID).Str("deleted_by", actor.ID).Msg("user deleted")
	return nil
}

// UpdateUserRoles replaces the user's roles with exactly roleNames.
func (s *AdminService) UpdateUserRoles(ctx context.Context, actor domain.Principal, userID string, roleNames []string) (*domain.User, error) {
	names, problems := checkRoleNames(roleNames)
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	user, err := s.users.SetRoles(ctx, userID, names)
	if err != nil {
		return nil, fmt.Errorf("update user roles: %w", err)
	}

	s.audit.Publish(domain.AuditEvent{
		Action:    domain.AuditUserRolesUpdated,
		ActorID:   actor.ID,
		SubjectID: userID,
		At:        s.now(),
		Details:   map[string]any{"roles": names},
	})
	return user, nil
}

func (s *AdminService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (s *AdminService) UpdateRolePermissions(ctx context.Context, actor domain.Principal, roleID string, perms domain.Permissions) (*domain.Role, error) {
	if err := perms.Validate(); err != nil {
		return nil, err
	}

	role, err := s.roles.UpdatePermissions(ctx, roleID, perms)
	if err != nil {
		return nil, fmt.Errorf("update role permissions: %w", err)
	}

	s.audit.Publish(domain.AuditEvent{
		Action:    domain.AuditRolePermsUpdated,
		ActorID:   actor.ID,
		SubjectID: role.ID,
		At:        s.now(),
		Details:   map[string]any{"role": role.Name},
	})
	return role, nil
}

// checkRoleNames trims and de-duplicates names, reporting unknown ones.
func checkRoleNames(names []string) ([]string, []string) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	var problems []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if seen[n] {
			continue
		}
		seen[n] = true
		if !domain.IsKnownRole(n) {
			problems = append(problems, fmt.Sprintf("roleNames: unknown role %q", n))
			continue
		}
		out = append(out, n)
	}
	return out, problems
}

// EnsureDefaultAdmin creates the seed administrator unless an account already
// holds its username or email. It reports whether an account was created.
func (s *AdminService) EnsureDefaultAdmin(ctx context.Context, seed ports.AdminSeed) (bool, error) {
	username := strings.TrimSpace(seed.Username)
	email := domain.NormalizeEmail(seed.Email)

	if problems := identityProblems(username, email, seed.FirstName, seed.LastName); len(problems) > 0 {
		return false, domain.NewValidationError(problems...)
	}

	_, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return false, fmt.Errorf("seed admin: %w", err)
	}

	password, generated := seed.Password, false
	if password == "" {
		if password, err = domain.GenerateTempPassword(); err != nil {
			return false, fmt.Errorf("seed admin: %w", err)
		}
		generated = true
	} else if err := domain.ValidatePassword(password); err != nil {
		return false, err
	}

	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}

	now := s.now()
	created, err := s.users.Create(ctx, &domain.User{
		ID:                 uuid.NewString(),
		Username:           username,
		Email:              email,
		PasswordHash:       hash,
		FirstName:          strings.TrimSpace(seed.FirstName),
		LastName:           strings.TrimSpace(seed.LastName),
		IsActive:           true,
		MustChangePassword: generated,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, []string{domain.RoleAdmin})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return false, nil
		}
		return false, fmt.Errorf("seed admin: %w", err)
	}

	ev := s.log.Info()
	if generated {
		ev = s.log.Warn().Str("temporary_password", password)
	}
	ev.Str("user_id", created.ID).Str("username", created.Username).
		Bool("must_change_password", generated).
		Msg("default administrator created")
	return true, nil
}
