package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/suivipro/platform/internal/core/domain"
	"github.com/suivipro/platform/internal/core/ports"
)

var testAdmin = domain.Principal{ID: "admin-1", Username: "admin", Roles: []string{domain.RoleAdmin}}

type adminFixture struct {
	users    *stubUserRepo
	roles    *stubRoleRepo
	notifier *stubNotifier
	audit    *recordingAudit
	svc      *AdminService
}

func newAdminFixture(notifyFails bool) *adminFixture {
	users := newStubUserRepo()
	f := &adminFixture{
		users:    users,
		roles:    newStubRoleRepo(users),
		notifier: newStubNotifier(notifyFails),
		audit:    &recordingAudit{},
	}
	f.svc = NewAdminService(f.users, f.roles, f.notifier, f.audit, bcrypt.MinCost, zerolog.Nop())
	return f
}

func (f *adminFixture) create(t *testing.T, username string, roles ...string) *domain.User {
	t.Helper()
	res, err := f.svc.CreateUser(context.Background(), testAdmin, ports.CreateUserInput{
		Username:  username,
		Email:     username + "@example.com",
		RoleNames: roles,
	})
	if err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	return res.User
}

func TestAdminService_CreateUser_EmailSent(t *testing.T) {
	f := newAdminFixture(false)

	res, err := f.svc.CreateUser(context.Background(), testAdmin, ports.CreateUserInput{
		Username:  "nina",
		Email:     "nina@example.com",
		RoleNames: []string{domain.RoleManager},
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if !res.EmailSent {
		t.Fatalf("expected email sent")
	}
	if res.TemporaryPassword != "" {
		t.Fatalf("temporary password must not be returned when email was sent")
	}

	u := res.User
	if !u.MustChangePassword {
		t.Fatalf("expected must-change flag")
	}
	if u.CreatedBy != testAdmin.ID {
		t.Fatalf("expected createdBy %s, got %s", testAdmin.ID, u.CreatedBy)
	}
	if names := u.RoleNames(); len(names) != 1 || names[0] != domain.RoleManager {
		t.Fatalf("unexpected roles: %v", names)
	}

	temp := f.notifier.welcomes["nina"]
	if len(temp) != 16 || !strings.HasSuffix(temp, domain.TempPasswordSuffix) {
		t.Fatalf("unexpected temp password shape: %q", temp)
	}
	if err := domain.ValidatePassword(temp); err != nil {
		t.Fatalf("temp password must satisfy policy: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(f.users.users[u.ID].PasswordHash), []byte(temp)) != nil {
		t.Fatalf("stored hash does not match emailed password")
	}
}

func TestAdminService_CreateUser_EmailFailureReturnsCredentials(t *testing.T) {
	f := newAdminFixture(true)

	res, err := f.svc.CreateUser(context.Background(), testAdmin, ports.CreateUserInput{Username: "oscar", Email: "oscar@example.com"})
	if err != nil {
		t.Fatalf("email failure must not fail creation: %v", err)
	}
	if res.EmailSent {
		t.Fatalf("expected emailSent=false")
	}
	if res.TemporaryPassword == "" {
		t.Fatalf("expected temporary password fallback")
	}
	if names := res.User.RoleNames(); len(names) != 1 || names[0] != domain.RoleUser {
		t.Fatalf("expected default role user, got %v", names)
	}
	if _, ok := f.users.users[res.User.ID]; !ok {
		t.Fatalf("user must persist when email fails")
	}
}

func TestAdminService_CreateUser_UnknownRole(t *testing.T) {
	f := newAdminFixture(false)

	_, err := f.svc.CreateUser(context.Background(), testAdmin, ports.CreateUserInput{
		Username:  "pete",
		Email:     "pete@example.com",
		RoleNames: []string{"superuser"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAdminService_CreateUser_DuplicateEmail(t *testing.T) {
	f := newAdminFixture(false)
	f.create(t, "quinn")

	_, err := f.svc.CreateUser(context.Background(), testAdmin, ports.CreateUserInput{Username: "quinn2", Email: "quinn@example.com"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAdminService_DeleteUser_Self(t *testing.T) {
	f := newAdminFixture(false)

	if err := f.svc.DeleteUser(context.Background(), testAdmin, testAdmin.ID); !errors.Is(err, domain.ErrSelfDeletion) {
		t.Fatalf("expected ErrSelfDeletion, got %v", err)
	}
}

func TestAdminService_DeleteUser(t *testing.T) {
	f := newAdminFixture(false)
	u := f.create(t, "rita")

	if err := f.svc.DeleteUser(context.Background(), testAdmin, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := f.users.users[u.ID]; ok {
		t.Fatalf("user still present")
	}
	if err := f.svc.DeleteUser(context.Background(), testAdmin, u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on second delete, got %v", err)
	}

	want := []domain.AuditAction{domain.AuditUserCreated, domain.AuditUserDeleted}
	got := f.audit.actions()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected audit trail: %v", got)
	}
}

func TestAdminService_UpdateUserRoles_ReplacesSet(t *testing.T) {
	f := newAdminFixture(false)
	u := f.create(t, "sam", domain.RoleUser, domain.RoleGuest)

	if _, err := f.svc.UpdateUserRoles(context.Background(), testAdmin, u.ID, []string{domain.RoleManager}); err != nil {
		t.Fatalf("update roles: %v", err)
	}

	auth := NewAuthService(f.users, &stubTokens{}, f.notifier, nil, nil, bcrypt.MinCost, zerolog.Nop())
	profile, err := auth.Profile(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if names := profile.RoleNames(); len(names) != 1 || names[0] != domain.RoleManager {
		t.Fatalf("expected exactly [manager], got %v", names)
	}
}

func TestAdminService_UpdateUserRoles_Validation(t *testing.T) {
	f := newAdminFixture(false)
	u := f.create(t, "tara")

	if _, err := f.svc.UpdateUserRoles(context.Background(), testAdmin, u.ID, []string{"root"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.UpdateUserRoles(context.Background(), testAdmin, "missing", []string{domain.RoleUser}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminService_UpdateRolePermissions(t *testing.T) {
	f := newAdminFixture(false)
	guest := f.users.roles[domain.RoleGuest]

	perms := domain.Permissions{Resources: map[string][]domain.Action{"reports": {domain.ActionRead}}}
	role, err := f.svc.UpdateRolePermissions(context.Background(), testAdmin, guest.ID, perms)
	if err != nil {
		t.Fatalf("update permissions: %v", err)
	}
	if got := role.Permissions.Resources["reports"]; len(got) != 1 || got[0] != domain.ActionRead {
		t.Fatalf("unexpected permissions: %+v", role.Permissions)
	}

	bad := domain.Permissions{Resources: map[string][]domain.Action{"reports": {"launch"}}}
	if _, err := f.svc.UpdateRolePermissions(context.Background(), testAdmin, guest.ID, bad); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.UpdateRolePermissions(context.Background(), testAdmin, "missing", perms); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestAdminService_ListRoles(t *testing.T) {
	f := newAdminFixture(false)

	roles, err := f.svc.ListRoles(context.Background())
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles) != len(domain.KnownRoles) {
		t.Fatalf("expected %d roles, got %d", len(domain.KnownRoles), len(roles))
	}
}

func TestAdminService_EnsureDefaultAdmin(t *testing.T) {
	f := newAdminFixture(false)
	seed := ports.AdminSeed{
		Username:  "admin",
		Email:     "admin@example.com",
		FirstName: "Administrateur",
		LastName:  "Système",
	}

	created, err := f.svc.EnsureDefaultAdmin(context.Background(), seed)
	if err != nil {
		t.Fatalf("EnsureDefaultAdmin: %v", err)
	}
	if !created {
		t.Fatalf("expected the admin to be created")
	}

	u, err := f.users.FindByUsernameOrEmail(context.Background(), "admin", "admin@example.com")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if got := u.RoleNames(); len(got) != 1 || got[0] != domain.RoleAdmin {
		t.Fatalf("expected [admin], got %v", got)
	}
	if !u.MustChangePassword {
		t.Fatalf("generated password must force a change")
	}

	again, err := f.svc.EnsureDefaultAdmin(context.Background(), seed)
	if err != nil || again {
		t.Fatalf("second seed should be a no-op, got created=%v err=%v", again, err)
	}
	if n := len(f.users.users); n != 1 {
		t.Fatalf("expected one account, got %d", n)
	}
}

func TestAdminService_EnsureDefaultAdmin_ConfiguredPassword(t *testing.T) {
	f := newAdminFixture(false)

	_, err := f.svc.EnsureDefaultAdmin(context.Background(), ports.AdminSeed{
		Username: "admin", Email: "admin@example.com", Password: "weak",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	created, err := f.svc.EnsureDefaultAdmin(context.Background(), ports.AdminSeed{
		Username: "admin", Email: "admin@example.com", Password: "Adm1n!pass",
	})
	if err != nil || !created {
		t.Fatalf("seed: created=%v err=%v", created, err)
	}
	u, _ := f.users.FindByUsernameOrEmail(context.Background(), "admin", "")
	if u.MustChangePassword {
		t.Fatalf("configured password should not force a change")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Adm1n!pass")) != nil {
		t.Fatalf("stored hash does not match the configured password")
	}
}
