package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/suivipro/platform/internal/core/domain"
)

// newTestDB opens a private in-memory sqlite database with the schema and
// default roles in place.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), GormConfig(zerolog.Nop()))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, zerolog.Nop()))
	_, err = SeedRoles(ctx, db, domain.DefaultRoles())
	require.NoError(t, err)
	return db
}

func newUser(username string) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$04$hash",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSeedRoles_Idempotent(t *testing.T) {
	db := newTestDB(t)

	n, err := SeedRoles(context.Background(), db, domain.DefaultRoles())
	require.NoError(t, err)
	assert.Zero(t, n)

	roles, err := NewRoleRepository(db, time.Second).List(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 4)
	assert.Equal(t, "admin", roles[0].Name)
	assert.True(t, roles[0].Permissions.All)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, time.Second)
	ctx := context.Background()

	u := newUser("alice")
	u.FirstName = "Alice"
	created, err := repo.Create(ctx, u, []string{domain.RoleUser, domain.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, []string{"manager", "user"}, created.RoleNames())
	assert.Equal(t, "Alice", created.FirstName)
	assert.Empty(t, created.LastName)

	byName, err := repo.FindByUsernameOrEmail(ctx, "alice", "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := repo.FindByUsernameOrEmail(ctx, "nobody", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.FindByUsernameOrEmail(ctx, "ghost", "ghost@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_UniqueEmailIsEnforced(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, time.Second)
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser("bob"), []string{domain.RoleUser})
	require.NoError(t, err)

	dup := newUser("robert")
	dup.Email = "bob@example.com"
	_, err = repo.Create(ctx, dup, []string{domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_CreateWithUnknownRoleRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, time.Second)
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser("carl"), []string{"superuser"})
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)

	_, err = repo.FindByUsernameOrEmail(ctx, "carl", "carl@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, time.Second)
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser("dana"), []string{domain.RoleUser})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	created.LastLogin = &now
	created.MustChangePassword = true
	created.IsActive = false
	created.PasswordHash = "$2a$04$other"
	require.NoError(t, repo.Update(ctx, created))

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(now))
	assert.True(t, got.MustChangePassword)
	assert.False(t, got.IsActive)
	assert.Equal(t, "$2a$04$other", got.PasswordHash)
	assert.Equal(t, []string{"user"}, got.RoleNames())

	missing := newUser("ghost")
	assert.ErrorIs(t, repo.Update(ctx, missing), domain.ErrUserNotFound)
}

func TestUserRepository_SetRolesReplaces(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, time.Second)
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser("eve"), []string{domain.RoleUser, domain.RoleGuest})
	require.NoError(t, err)

	updated, err := repo.SetRoles(ctx, created.ID, []string{domain.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, []string{"manager"}, updated.RoleNames())

	got, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"manager"}, got.RoleNames())

	cleared, err := repo.SetRoles(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, cleared.RoleNames())

	_, err = repo.SetRoles(ctx, uuid.NewString(), []string{domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_DeleteCascadesAssociations(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, time.Second)
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser("finn"), []string{domain.RoleUser})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	var links int64
	require.NoError(t, db.Model(&userRoleRecord{}).Where("user_id = ?", created.ID).Count(&links).Error)
	assert.Zero(t, links)

	assert.ErrorIs(t, repo.Delete(ctx, created.ID), domain.ErrUserNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "bogus"), domain.ErrUserNotFound)
}

func TestUserRepository_ListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db, time.Second)
	ctx := context.Background()

	older := newUser("gail")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	_, err := repo.Create(ctx, older, []string{domain.RoleUser})
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("hugo"), []string{domain.RoleAdmin})
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "hugo", users[0].Username)
	assert.Equal(t, "gail", users[1].Username)
}

func TestRoleRepository_UpdatePermissions(t *testing.T) {
	db := newTestDB(t)
	repo := NewRoleRepository(db, time.Second)
	ctx := context.Background()

	roles, err := repo.List(ctx)
	require.NoError(t, err)
	var guest domain.Role
	for _, r := range roles {
		if r.Name == domain.RoleGuest {
			guest = r
		}
	}
	require.NotEmpty(t, guest.ID)

	perms := domain.NewPermissions(false, map[string][]domain.Action{"reports": {domain.ActionRead}})
	updated, err := repo.UpdatePermissions(ctx, guest.ID, perms)
	require.NoError(t, err)
	assert.Equal(t, []domain.Action{domain.ActionRead}, updated.Permissions.Resources["reports"])
	assert.NotContains(t, updated.Permissions.Resources, "profile")

	_, err = repo.UpdatePermissions(ctx, uuid.NewString(), perms)
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	_, err = repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5432, Name: "authdb", User: "postgres", Password: "p@ss word"}
	dsn := cfg.DSN()
	assert.True(t, strings.HasPrefix(dsn, "postgres://postgres:p%40ss%20word@db:5432/authdb?"))
	assert.Contains(t, dsn, "sslmode=disable")
}
