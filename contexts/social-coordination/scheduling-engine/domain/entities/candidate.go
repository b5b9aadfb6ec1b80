package entities

import "time"

// CandidateTime is a proposed start/end range for an event, subject to voting.
// Candidates belong to exactly one event and are retained read-only for audit
// after the event is scheduled.
type CandidateTime struct {
	CandidateID string
	EventID     string
	StartTime   time.Time
	EndTime     time.Time
	ProposedBy  string
	CreatedAt   time.Time
}

func (c CandidateTime) ValidRange() bool {
	return c.StartTime.Before(c.EndTime)
}

// SameRange reports an exact duplicate range. Partial overlap is legitimate
// between distinct candidates and is not checked here.
func (c CandidateTime) SameRange(other CandidateTime) bool {
	return c.StartTime.Equal(other.StartTime) && c.EndTime.Equal(other.EndTime)
}
