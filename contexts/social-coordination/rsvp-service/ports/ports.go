package ports

import (
	"context"
	"time"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/entities"
	contractsv1 "github.com/Z3r0J/togetherly-backend-sub001/contracts/gen/events/v1"
)

type RsvpRepository interface {
	// UpsertRsvp inserts the response or replaces the user's prior response for
	// the same event, keyed by the (event_id, user_id) uniqueness constraint.
	UpsertRsvp(ctx context.Context, rsvp entities.Rsvp) error
	GetRsvpByUser(ctx context.Context, eventID string, userID string) (entities.Rsvp, bool, error)
	ListRsvpsByEvent(ctx context.Context, eventID string) ([]entities.Rsvp, error)
}

// WindowRepository tracks which events are open for attendance responses.
type WindowRepository interface {
	OpenWindow(ctx context.Context, window entities.RsvpWindow) error
	GetWindow(ctx context.Context, eventID string) (entities.RsvpWindow, bool, error)
}

type EventEnvelope = contractsv1.Envelope

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
