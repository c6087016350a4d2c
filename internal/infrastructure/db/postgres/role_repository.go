package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/suivipro/platform/internal/core/domain"
	"github.com/suivipro/platform/internal/core/ports"
)

var _ ports.RoleRepository = (*RoleRepository)(nil)

// RoleRepository implements ports.RoleRepository on GORM.
type RoleRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewRoleRepository(db *gorm.DB, timeout time.Duration) *RoleRepository {
	return &RoleRepository{db: db, timeout: timeoutOrDefault(timeout)}
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var recs []roleRecord
	if err := r.db.WithContext(ctx).Order("name").Find(&recs).Error; err != nil {
		return nil, mapError(err, domain.ErrRoleNotFound)
	}

	roles := make([]domain.Role, 0, len(recs))
	for _, rec := range recs {
		role, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.findByID(r.db.WithContext(ctx), id)
}

func (r *RoleRepository) findByID(tx *gorm.DB, id string) (*domain.Role, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrRoleNotFound
	}
	var rec roleRecord
	if err := tx.Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, mapError(err, domain.ErrRoleNotFound)
	}
	return rec.toDomain()
}

// UpdatePermissions overwrites the role's permission map.
func (r *RoleRepository) UpdatePermissions(ctx context.Context, id string, perms domain.Permissions) (*domain.Role, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrRoleNotFound
	}
	encoded, err := encodePermissions(perms)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&roleRecord{ID: id}).
		Updates(map[string]any{"permissions": encoded, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, mapError(res.Error, domain.ErrRoleNotFound)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrRoleNotFound
	}
	return r.findByID(r.db.WithContext(ctx), id)
}
