package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suivipro/platform/internal/core/domain"
)

// SeedRoles inserts the given roles, skipping names that already exist.
// Existing permission maps are left untouched.
func SeedRoles(ctx context.Context, db *gorm.DB, roles []domain.Role) (int64, error) {
	recs := make([]roleRecord, 0, len(roles))
	for _, role := range roles {
		perms, err := encodePermissions(role.Permissions)
		if err != nil {
			return 0, err
		}
		recs = append(recs, roleRecord{
			ID:          uuid.NewString(),
			Name:        role.Name,
			Description: role.Description,
			Permissions: perms,
		})
	}

	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&recs)
	if res.Error != nil {
		return 0, fmt.Errorf("seed roles: %w", res.Error)
	}
	return res.RowsAffected, nil
}
