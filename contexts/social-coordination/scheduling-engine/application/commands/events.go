package commands

import (
	"encoding/json"
	"time"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/ports"
)

func newSchedulingEnvelope(
	eventID string,
	eventType string,
	scheduledEventID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Schedule transitions are partitioned by event so RSVP consumers observe
	// each event's lifecycle in order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "scheduling-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "event_id",
		PartitionKey:     scheduledEventID,
		Data:             payload,
	}, nil
}
