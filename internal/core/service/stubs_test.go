package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/suivipro/platform/internal/core/domain"
	"github.com/suivipro/platform/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Credential store stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User
	roles map[string]domain.Role
}

func newStubUserRepo() *stubUserRepo {
	roles := make(map[string]domain.Role)
	for _, r := range domain.DefaultRoles() {
		r.ID = uuid.NewString()
		roles[r.Name] = r
	}
	return &stubUserRepo{users: make(map[string]*domain.User), roles: roles}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]domain.Role(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) resolve(names []string) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(names))
	for _, n := range names {
		role, ok := r.roles[n]
		if !ok {
			return nil, domain.ErrRoleNotFound
		}
		out = append(out, role)
	}
	return out, nil
}

func (r *stubUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User, roleNames []string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	roles, err := r.resolve(roleNames)
	if err != nil {
		return nil, err
	}
	stored := cloneUser(user)
	stored.Roles = roles
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	updated := cloneUser(user)
	updated.Roles = stored.Roles
	r.users[user.ID] = updated
	return nil
}

func (r *stubUserRepo) SetRoles(_ context.Context, userID string, roleNames []string) (*domain.User, error) {
	stored, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	roles, err := r.resolve(roleNames)
	if err != nil {
		return nil, err
	}
	stored.Roles = roles
	return cloneUser(stored), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubRoleRepo struct {
	byID map[string]domain.Role
}

func newStubRoleRepo(users *stubUserRepo) *stubRoleRepo {
	byID := make(map[string]domain.Role)
	for _, r := range users.roles {
		byID[r.ID] = r
	}
	return &stubRoleRepo{byID: byID}
}

func (r *stubRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(r.byID))
	for _, role := range r.byID {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	role, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &role, nil
}

func (r *stubRoleRepo) UpdatePermissions(_ context.Context, id string, perms domain.Permissions) (*domain.Role, error) {
	role, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	role.Permissions = perms
	r.byID[id] = role
	return &role, nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

type stubTokens struct {
	issued []string
}

func (t *stubTokens) Issue(user *domain.User) (string, error) {
	t.issued = append(t.issued, user.ID)
	return "token-for-" + user.Username, nil
}

type stubNotifier struct {
	fail        bool
	welcomes    map[string]string
	passChanged []string
}

func newStubNotifier(fail bool) *stubNotifier {
	return &stubNotifier{fail: fail, welcomes: make(map[string]string)}
}

func (n *stubNotifier) SendWelcome(_ context.Context, user *domain.User, tempPassword string) ports.NotifyResult {
	if n.fail {
		return ports.NotifyResult{Err: errors.New("smtp down")}
	}
	n.welcomes[user.Username] = tempPassword
	return ports.NotifyResult{Sent: true}
}

func (n *stubNotifier) SendPasswordChanged(_ context.Context, user *domain.User) ports.NotifyResult {
	if n.fail {
		return ports.NotifyResult{Err: errors.New("smtp down")}
	}
	n.passChanged = append(n.passChanged, user.Username)
	return ports.NotifyResult{Sent: true}
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Publish(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

type stubLimiter struct {
	blocked  bool
	err      error
	failures map[string]int
	resets   []string
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: make(map[string]int)}
}

func (l *stubLimiter) Blocked(context.Context, string) (bool, error) { return l.blocked, l.err }

func (l *stubLimiter) RecordFailure(_ context.Context, key string) error {
	l.failures[key]++
	return l.err
}

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	l.resets = append(l.resets, key)
	return l.err
}
