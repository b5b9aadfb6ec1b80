package entities

import (
	"strings"
	"time"
)

type RsvpStatus string

const (
	RsvpStatusGoing    RsvpStatus = "going"
	RsvpStatusMaybe    RsvpStatus = "maybe"
	RsvpStatusDeclined RsvpStatus = "declined"
)

// Rsvp is one member's attendance response for a scheduled event. At most one
// row exists per (event, user); responding again replaces the prior answer.
type Rsvp struct {
	RsvpID    string
	EventID   string
	UserID    string
	Status    RsvpStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RsvpWindow marks an event as open for attendance responses. Rows are
// written by the schedule consumer when an event leaves draft.
type RsvpWindow struct {
	EventID      string
	SourceStatus string
	OpenedAt     time.Time
}

// RsvpSummary aggregates responses for one event.
type RsvpSummary struct {
	EventID  string
	Going    int
	Maybe    int
	Declined int
}

func IsSupportedRsvpStatus(value string) bool {
	switch RsvpStatus(strings.ToLower(strings.TrimSpace(value))) {
	case RsvpStatusGoing, RsvpStatusMaybe, RsvpStatusDeclined:
		return true
	default:
		return false
	}
}
