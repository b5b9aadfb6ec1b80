package entities

import "time"

// Vote is one member's current choice among an event's candidate times.
// At most one vote exists per (event, voter); re-voting replaces the prior
// row rather than adding a second one.
type Vote struct {
	VoteID      string
	EventID     string
	CandidateID string
	VoterID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
