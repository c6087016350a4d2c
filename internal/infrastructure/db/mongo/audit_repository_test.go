package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suivipro/platform/internal/core/domain"
)

func TestAuditDocument(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	recorded := time.Now().UTC()

	doc := auditDocument(domain.AuditEvent{
		Action:    domain.AuditUserDeleted,
		ActorID:   "admin-1",
		SubjectID: "user-9",
		At:        at,
	}, recorded)

	assert.Equal(t, "user.deleted", doc["action"])
	assert.Equal(t, "admin-1", doc["actor_id"])
	assert.Equal(t, "user-9", doc["subject_id"])
	assert.Equal(t, at.UTC(), doc["at"])
	assert.Equal(t, recorded, doc["recorded_at"])
	assert.NotContains(t, doc, "details")

	withDetails := auditDocument(domain.AuditEvent{
		Action:  domain.AuditUserRolesUpdated,
		Details: map[string]any{"roles": []string{"manager"}},
	}, recorded)
	assert.Equal(t, map[string]any{"roles": []string{"manager"}}, withDetails["details"])
}
