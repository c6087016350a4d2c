package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/suivipro/platform/internal/core/domain"
)

type userRecord struct {
	ID                 string  `gorm:"type:uuid;primaryKey"`
	Username           string  `gorm:"size:50;not null;uniqueIndex"`
	Email              string  `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash       string  `gorm:"size:255;not null"`
	FirstName          *string `gorm:"size:100"`
	LastName           *string `gorm:"size:100"`
	IsActive           bool    `gorm:"not null"`
	MustChangePassword bool    `gorm:"not null"`
	CreatedBy          *string `gorm:"type:uuid"`
	LastLogin          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Roles []roleRecord `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID"`
}

func (userRecord) TableName() string { return "users" }

type roleRecord struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"size:50;not null;uniqueIndex"`
	Description string `gorm:"size:255;not null"`
	Permissions string `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (roleRecord) TableName() string { return "roles" }

type userRoleRecord struct {
	UserID string `gorm:"type:uuid;primaryKey"`
	RoleID string `gorm:"type:uuid;primaryKey"`
}

func (userRoleRecord) TableName() string { return "user_roles" }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		FirstName:          optional(u.FirstName),
		LastName:           optional(u.LastName),
		IsActive:           u.IsActive,
		MustChangePassword: u.MustChangePassword,
		CreatedBy:          optional(u.CreatedBy),
		LastLogin:          u.LastLogin,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (r userRecord) toDomain() (*domain.User, error) {
	roles := make([]domain.Role, 0, len(r.Roles))
	for _, rr := range r.Roles {
		role, err := rr.toDomain()
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return &domain.User{
		ID:                 r.ID,
		Username:           r.Username,
		Email:              r.Email,
		PasswordHash:       r.PasswordHash,
		FirstName:          deref(r.FirstName),
		LastName:           deref(r.LastName),
		IsActive:           r.IsActive,
		MustChangePassword: r.MustChangePassword,
		CreatedBy:          deref(r.CreatedBy),
		LastLogin:          r.LastLogin,
		Roles:              roles,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}, nil
}

func encodePermissions(p domain.Permissions) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode permissions: %w", err)
	}
	return string(raw), nil
}

func (r roleRecord) toDomain() (*domain.Role, error) {
	var perms domain.Permissions
	if r.Permissions != "" {
		if err := json.Unmarshal([]byte(r.Permissions), &perms); err != nil {
			return nil, fmt.Errorf("decode permissions of role %s: %w", r.Name, err)
		}
	}
	if perms.Resources == nil {
		perms.Resources = map[string][]domain.Action{}
	}
	return &domain.Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}
