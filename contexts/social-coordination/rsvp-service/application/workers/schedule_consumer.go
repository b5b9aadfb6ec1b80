package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/application"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/entities"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/ports"
)

const (
	eventLockedTopic    = "event.locked"
	eventFinalizedTopic = "event.finalized"
	defaultScheduleCG   = "rsvp-service-schedule-cg"
)

// ScheduleConsumer opens rsvp windows when the scheduling engine fixes an
// event's time. Locked and finalized events are treated identically: both mean
// attendance responses may start.
type ScheduleConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Windows       ports.WindowRepository
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

func (c ScheduleConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("schedule consumer disabled by feature flag",
			"event", "rsvp_schedule_consumer_disabled",
			"module", "social-coordination/rsvp-service",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultScheduleCG
	}
	for _, topic := range []string{eventLockedTopic, eventFinalizedTopic} {
		if err := c.Subscriber.Subscribe(ctx, topic, group, c.handleScheduled); err != nil {
			logger.Error("schedule consumer subscribe failed",
				"event", "rsvp_schedule_consumer_subscribe_failed",
				"module", "social-coordination/rsvp-service",
				"layer", "worker",
				"topic", topic,
				"consumer_group", group,
				"error", err.Error(),
			)
			return err
		}
	}
	logger.Info("schedule consumer subscriptions active",
		"event", "rsvp_schedule_consumer_started",
		"module", "social-coordination/rsvp-service",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c ScheduleConsumer) handleScheduled(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	if alreadyProcessed, err := c.reserveEvent(ctx, event); err != nil {
		return err
	} else if alreadyProcessed {
		logger.Debug("schedule event replay skipped",
			"event", "rsvp_schedule_event_replayed",
			"module", "social-coordination/rsvp-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}
	var payload struct {
		EventID string `json:"event_id"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("schedule event payload decode failed",
			"event", "rsvp_schedule_event_decode_failed",
			"module", "social-coordination/rsvp-service",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if strings.TrimSpace(payload.EventID) == "" {
		return nil
	}
	window := entities.RsvpWindow{
		EventID:      strings.TrimSpace(payload.EventID),
		SourceStatus: strings.TrimSpace(payload.Status),
		OpenedAt:     c.now(),
	}
	if err := c.Windows.OpenWindow(ctx, window); err != nil {
		logger.Error("rsvp window open failed",
			"event", "rsvp_window_open_failed",
			"module", "social-coordination/rsvp-service",
			"layer", "worker",
			"event_id", event.EventID,
			"scheduled_event_id", window.EventID,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("rsvp window opened",
		"event", "rsvp_window_opened",
		"module", "social-coordination/rsvp-service",
		"layer", "worker",
		"event_id", event.EventID,
		"scheduled_event_id", window.EventID,
		"source_status", window.SourceStatus,
	)
	return nil
}

func (c ScheduleConsumer) reserveEvent(ctx context.Context, event ports.EventEnvelope) (bool, error) {
	if c.Dedup == nil {
		return false, nil
	}
	ttl := c.DedupTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), c.now().Add(ttl))
}

func (c ScheduleConsumer) now() time.Time {
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return now
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
