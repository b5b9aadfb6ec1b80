package unit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	schedulingengine "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine"
	schedulingworkers "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/application/workers"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/ports"
	httptransport "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/transport/http"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type capturingPublisher struct {
	published []publishedEvent
	failFirst bool
	calls     int
}

type publishedEvent struct {
	Topic string
	Event ports.EventEnvelope
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.calls++
	if p.failFirst && p.calls == 1 {
		return context.DeadlineExceeded
	}
	p.published = append(p.published, publishedEvent{Topic: topic, Event: event})
	return nil
}

func lockSeededEvent(t *testing.T, module schedulingengine.Module) {
	t.Helper()
	candidate := proposeWindow(t, module, "owner-1", time.Date(2026, 9, 4, 19, 0, 0, 0, time.UTC))
	if _, err := module.Handler.LockEventHandler(context.Background(), "event-1", "owner-1", httptransport.LockEventRequest{
		CandidateID: candidate.CandidateID,
	}); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
}

func TestSchedulingLockAppendsOutboxEvent(t *testing.T) {
	module := newDraftSchedulingModule(t)
	lockSeededEvent(t, module)

	pending, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending outbox row, got %d", len(pending))
	}

	var envelope struct {
		EventType string `json:"event_type"`
		Data      struct {
			EventID  string `json:"event_id"`
			Status   string `json:"status"`
			LockedBy string `json:"locked_by"`
		} `json:"data"`
	}
	if err := json.Unmarshal(pending[0].Payload, &envelope); err != nil {
		t.Fatalf("decode outbox envelope failed: %v", err)
	}
	if envelope.EventType != "event.locked" {
		t.Fatalf("expected event.locked envelope, got %s", envelope.EventType)
	}
	if envelope.Data.EventID != "event-1" || envelope.Data.LockedBy != "owner-1" {
		t.Fatalf("unexpected lock payload: %+v", envelope.Data)
	}
}

func TestSchedulingOutboxRelayPublishesAndMarksRows(t *testing.T) {
	module := newDraftSchedulingModule(t)
	lockSeededEvent(t, module)

	publisher := &capturingPublisher{}
	relay := schedulingworkers.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
		Clock:     fixedClock{now: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)},
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.published))
	}
	if publisher.published[0].Topic != "event.locked" {
		t.Fatalf("expected event.locked topic, got %s", publisher.published[0].Topic)
	}

	pending, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected outbox drained after relay, got %d rows", len(pending))
	}
}

func TestSchedulingOutboxRelayKeepsRowOnPublishFailure(t *testing.T) {
	module := newDraftSchedulingModule(t)
	lockSeededEvent(t, module)

	publisher := &capturingPublisher{failFirst: true}
	relay := schedulingworkers.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected relay to surface publish failure")
	}

	pending, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected row to stay pending after failure, got %d", len(pending))
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("retry relay run failed: %v", err)
	}
	pending, err = module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected outbox drained after retry, got %d rows", len(pending))
	}
}
