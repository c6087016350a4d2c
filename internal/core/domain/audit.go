package domain

import "time"

// AuditAction names a state change recorded in the audit trail.
type AuditAction string

const (
	AuditUserCreated        AuditAction = "user.created"
	AuditUserDeleted        AuditAction = "user.deleted"
	AuditUserRolesUpdated   AuditAction = "user.roles_updated"
	AuditRolePermsUpdated   AuditAction = "role.permissions_updated"
	AuditPasswordChanged    AuditAction = "user.password_changed"
	AuditUserSelfRegistered AuditAction = "user.registered"
)

// AuditEvent is an append-only record of who changed what.
type AuditEvent struct {
	Action    AuditAction
	ActorID   string
	SubjectID string
	At        time.Time
	Details   map[string]any
}
