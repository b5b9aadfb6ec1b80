package entities

import (
	"strings"
	"time"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusLocked    EventStatus = "locked"
	EventStatusFinalized EventStatus = "finalized"
)

// Event is a circle event moving through the scheduling lifecycle.
// StartsAt/EndsAt are nil while the event is in draft and are written exactly
// once by the transition that leaves draft.
type Event struct {
	EventID     string
	CircleID    string
	OwnerID     string
	Title       string
	Description string
	Status      EventStatus
	StartsAt    *time.Time
	EndsAt      *time.Time
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScheduledWindow is the fixed time range of an event that has left draft.
// Both timestamps are guaranteed present.
type ScheduledWindow struct {
	StartsAt time.Time
	EndsAt   time.Time
}

func (e Event) IsDraft() bool {
	return e.Status == EventStatusDraft
}

// Scheduled returns the fixed window once the event has left draft. The bool
// result is false for draft events and for rows whose timestamps were never
// written, so callers never touch a half-populated window.
func (e Event) Scheduled() (ScheduledWindow, bool) {
	if !IsTerminalStatus(e.Status) || e.StartsAt == nil || e.EndsAt == nil {
		return ScheduledWindow{}, false
	}
	return ScheduledWindow{
		StartsAt: e.StartsAt.UTC(),
		EndsAt:   e.EndsAt.UTC(),
	}, true
}

func IsTerminalStatus(status EventStatus) bool {
	switch status {
	case EventStatusLocked, EventStatusFinalized:
		return true
	default:
		return false
	}
}

func IsSupportedEventStatus(value string) bool {
	switch EventStatus(strings.TrimSpace(value)) {
	case EventStatusDraft, EventStatusLocked, EventStatusFinalized:
		return true
	default:
		return false
	}
}
