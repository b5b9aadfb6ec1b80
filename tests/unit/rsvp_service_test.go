package unit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	rsvpservice "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service"
	rsvpworkers "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/application/workers"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/entities"
	domainerrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/errors"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/ports"
	httptransport "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/transport/http"
)

type rsvpStubSubscriber struct {
	handlers map[string]func(context.Context, ports.EventEnvelope) error
}

func (s *rsvpStubSubscriber) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	if s.handlers == nil {
		s.handlers = map[string]func(context.Context, ports.EventEnvelope) error{}
	}
	s.handlers[topic] = handler
	return nil
}

func TestRsvpRespondBeforeWindowOpensRejected(t *testing.T) {
	module := rsvpservice.NewInMemoryModule(&rsvpStubSubscriber{}, nil)

	_, err := module.Handler.RespondHandler(context.Background(), "event-1", "user-1", httptransport.RespondRequest{
		Status: "going",
	})
	if !errors.Is(err, domainerrors.ErrRsvpNotOpen) {
		t.Fatalf("expected rsvp-not-open error, got %v", err)
	}
}

func TestRsvpConsumerOpensWindowAndResponsesFlow(t *testing.T) {
	sub := &rsvpStubSubscriber{}
	module := rsvpservice.NewInMemoryModule(sub, nil)

	if err := module.Consumer.Start(context.Background()); err != nil {
		t.Fatalf("start schedule consumer failed: %v", err)
	}
	handler := sub.handlers["event.locked"]
	if handler == nil {
		t.Fatalf("expected event.locked handler registration")
	}
	if sub.handlers["event.finalized"] == nil {
		t.Fatalf("expected event.finalized handler registration")
	}

	payload, _ := json.Marshal(map[string]any{
		"event_id": "event-1",
		"status":   "locked",
	})
	envelope := ports.EventEnvelope{
		EventID:   "envelope-1",
		EventType: "event.locked",
		Data:      payload,
	}
	if err := handler(context.Background(), envelope); err != nil {
		t.Fatalf("event.locked handler failed: %v", err)
	}

	window, open, err := module.Store.GetWindow(context.Background(), "event-1")
	if err != nil || !open {
		t.Fatalf("expected open window, open=%v err=%v", open, err)
	}
	if window.SourceStatus != "locked" {
		t.Fatalf("expected window source status locked, got %s", window.SourceStatus)
	}

	// Replayed envelope must be a no-op.
	if err := handler(context.Background(), envelope); err != nil {
		t.Fatalf("replayed envelope failed: %v", err)
	}

	first, err := module.Handler.RespondHandler(context.Background(), "event-1", "user-1", httptransport.RespondRequest{
		Status: "maybe",
	})
	if err != nil {
		t.Fatalf("respond failed: %v", err)
	}
	if first.Replaced {
		t.Fatalf("expected fresh response")
	}

	second, err := module.Handler.RespondHandler(context.Background(), "event-1", "user-1", httptransport.RespondRequest{
		Status: "going",
	})
	if err != nil {
		t.Fatalf("re-respond failed: %v", err)
	}
	if !second.Replaced {
		t.Fatalf("expected replacement of previous response")
	}
	if second.RsvpID != first.RsvpID {
		t.Fatalf("expected stable rsvp id, got %s and %s", first.RsvpID, second.RsvpID)
	}

	if _, err := module.Handler.RespondHandler(context.Background(), "event-1", "user-2", httptransport.RespondRequest{
		Status: "declined",
	}); err != nil {
		t.Fatalf("second user respond failed: %v", err)
	}

	list, err := module.Handler.ListResponsesHandler(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("list responses failed: %v", err)
	}
	if list.Going != 1 || list.Maybe != 0 || list.Declined != 1 {
		t.Fatalf("unexpected counts: going=%d maybe=%d declined=%d", list.Going, list.Maybe, list.Declined)
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected two responses, got %d", len(list.Items))
	}
}

func TestRsvpRejectsUnknownStatus(t *testing.T) {
	sub := &rsvpStubSubscriber{}
	module := rsvpservice.NewInMemoryModule(sub, nil)
	module.Store.OpenWindow(context.Background(), entities.RsvpWindow{
		EventID:      "event-1",
		SourceStatus: "finalized",
		OpenedAt:     time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	})

	_, err := module.Handler.RespondHandler(context.Background(), "event-1", "user-1", httptransport.RespondRequest{
		Status: "attending",
	})
	if !errors.Is(err, domainerrors.ErrInvalidRsvpStatus) {
		t.Fatalf("expected invalid status error, got %v", err)
	}
}

func TestRsvpConsumerDisabledByFlagSkipsSubscriptions(t *testing.T) {
	sub := &rsvpStubSubscriber{}
	consumer := rsvpworkers.ScheduleConsumer{
		Subscriber: sub,
		Disabled:   true,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("disabled consumer start failed: %v", err)
	}
	if len(sub.handlers) != 0 {
		t.Fatalf("expected no subscriptions when disabled, got %d", len(sub.handlers))
	}
}
