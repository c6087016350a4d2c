package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/suivipro/platform/internal/core/domain"
)

type memoryRecorder struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	fail   bool
}

func (r *memoryRecorder) Record(_ context.Context, e domain.AuditEvent) error {
	if r.fail {
		return errors.New("mongo down")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *memoryRecorder) snapshot() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditEvent(nil), r.events...)
}

func TestDispatcher_PreservesPerSubjectOrder(t *testing.T) {
	rec := &memoryRecorder{}
	d := NewDispatcher(4, rec, zerolog.Nop())
	d.Start()

	for i := 0; i < 50; i++ {
		d.Publish(domain.AuditEvent{
			Action:    domain.AuditUserRolesUpdated,
			SubjectID: fmt.Sprintf("user-%d", i%5),
			Details:   map[string]any{"seq": i},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	events := rec.snapshot()
	if len(events) != 50 {
		t.Fatalf("expected 50 recorded events, got %d", len(events))
	}

	last := make(map[string]int)
	for _, e := range events {
		seq := e.Details["seq"].(int)
		if prev, ok := last[e.SubjectID]; ok && seq < prev {
			t.Fatalf("out of order for %s: %d after %d", e.SubjectID, seq, prev)
		}
		last[e.SubjectID] = seq
	}
}

func TestDispatcher_ShardIndexIsDeterministic(t *testing.T) {
	d := NewDispatcher(8, &memoryRecorder{}, zerolog.Nop())

	a := d.shardIndex("user-42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("user-42"); got != a {
			t.Fatalf("shard changed: %d vs %d", got, a)
		}
	}
	if a < 0 || a >= 8 {
		t.Fatalf("shard out of range: %d", a)
	}
}

func TestDispatcher_RecorderFailureIsNotFatal(t *testing.T) {
	rec := &memoryRecorder{fail: true}
	d := NewDispatcher(1, rec, zerolog.Nop())
	d.Start()

	d.Publish(domain.AuditEvent{Action: domain.AuditUserDeleted, SubjectID: "u"})

	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestDispatcher_PublishAfterStopIsDropped(t *testing.T) {
	rec := &memoryRecorder{}
	d := NewDispatcher(1, rec, zerolog.Nop())
	d.Start()
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	d.Publish(domain.AuditEvent{Action: domain.AuditUserDeleted, SubjectID: "u"})

	if n := len(rec.snapshot()); n != 0 {
		t.Fatalf("expected no events after stop, got %d", n)
	}
	if err := d.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
