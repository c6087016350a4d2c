package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suivipro/platform/internal/core/domain"
	"github.com/suivipro/platform/internal/core/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

// UserRepository implements ports.UserRepository on GORM.
type UserRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewUserRepository returns a repository whose calls are bounded by timeout.
func NewUserRepository(db *gorm.DB, timeout time.Duration) *UserRepository {
	return &UserRepository{db: db, timeout: timeoutOrDefault(timeout)}
}

func withRoles(db *gorm.DB) *gorm.DB {
	return db.Preload("Roles", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("roles.name")
	})
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rec userRecord
	err := withRoles(r.db.WithContext(ctx)).
		Where("username = ? OR email = ?", username, email).
		First(&rec).Error
	if err != nil {
		return nil, mapError(err, domain.ErrUserNotFound)
	}
	return rec.toDomain()
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.findByID(r.db.WithContext(ctx), id)
}

func (r *UserRepository) findByID(tx *gorm.DB, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	var rec userRecord
	if err := withRoles(tx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, mapError(err, domain.ErrUserNotFound)
	}
	return rec.toDomain()
}

// List returns every user, newest first.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var recs []userRecord
	if err := withRoles(r.db.WithContext(ctx)).Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, mapError(err, domain.ErrUserNotFound)
	}

	users := make([]domain.User, 0, len(recs))
	for _, rec := range recs {
		u, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User, roleNames []string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var created *domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := toUserRecord(user)
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return err
		}
		if err := linkRoles(tx, rec.ID, roleNames); err != nil {
			return err
		}
		u, err := r.findByID(tx, rec.ID)
		if err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, mapError(err, domain.ErrUserNotFound)
	}
	return created, nil
}

// Update writes the mutable columns. Username, email and roles are not
// touched here.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec := toUserRecord(user)
	res := r.db.WithContext(ctx).
		Model(&userRecord{ID: user.ID}).
		Select("first_name", "last_name", "is_active", "must_change_password", "password_hash", "last_login", "updated_at").
		Updates(&rec)
	if res.Error != nil {
		return mapError(res.Error, domain.ErrUserNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetRoles replaces the user's role associations with exactly roleNames.
func (r *UserRepository) SetRoles(ctx context.Context, userID string, roleNames []string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var updated *domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.findByID(tx, userID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&userRoleRecord{}).Error; err != nil {
			return err
		}
		if err := linkRoles(tx, userID, roleNames); err != nil {
			return err
		}
		if err := tx.Model(&userRecord{ID: userID}).Update("updated_at", time.Now().UTC()).Error; err != nil {
			return err
		}
		u, err := r.findByID(tx, userID)
		if err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, mapError(err, domain.ErrUserNotFound)
	}
	return updated, nil
}

// Delete hard-deletes the user and its role associations.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrUserNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&userRoleRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&userRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
	return mapError(err, domain.ErrUserNotFound)
}

// linkRoles inserts user_roles rows for the named roles. Every name must
// resolve to a seeded role.
func linkRoles(tx *gorm.DB, userID string, roleNames []string) error {
	if len(roleNames) == 0 {
		return nil
	}

	var roles []roleRecord
	if err := tx.Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
		return err
	}
	if len(roles) != len(roleNames) {
		return fmt.Errorf("%w: requested %v", domain.ErrRoleNotFound, roleNames)
	}

	links := make([]userRoleRecord, 0, len(roles))
	for _, role := range roles {
		links = append(links, userRoleRecord{UserID: userID, RoleID: role.ID})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}
