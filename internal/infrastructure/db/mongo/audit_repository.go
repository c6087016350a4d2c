package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/suivipro/platform/internal/core/domain"
	"github.com/suivipro/platform/internal/core/ports"
)

const auditCollection = "audit_events"

var _ ports.AuditRecorder = (*AuditRepository)(nil)

// AuditRepository appends audit events to the audit_events collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

// EnsureIndexes creates the lookup indexes used by operators browsing the
// trail by subject or actor.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}}, Options: options.Index().SetName("action_1")},
	})
	if err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	return nil
}

func (r *AuditRepository) Record(ctx context.Context, event domain.AuditEvent) error {
	_, err := r.coll.InsertOne(ctx, auditDocument(event, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func auditDocument(event domain.AuditEvent, recordedAt time.Time) bson.M {
	doc := bson.M{
		"action":      string(event.Action),
		"actor_id":    event.ActorID,
		"subject_id":  event.SubjectID,
		"at":          event.At.UTC(),
		"recorded_at": recordedAt,
	}
	if len(event.Details) > 0 {
		doc["details"] = event.Details
	}
	return doc
}
