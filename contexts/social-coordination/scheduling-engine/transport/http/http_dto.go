package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ProposeTimeRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type CandidateResponse struct {
	CandidateID string    `json:"candidate_id"`
	EventID     string    `json:"event_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	ProposedBy  string    `json:"proposed_by"`
}

type VoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

type VoteResponse struct {
	VoteID      string `json:"vote_id"`
	EventID     string `json:"event_id"`
	CandidateID string `json:"candidate_id"`
	VoterID     string `json:"voter_id"`
	Replaced    bool   `json:"replaced"`
}

type LockEventRequest struct {
	CandidateID string `json:"candidate_id"`
}

type ScheduleResponse struct {
	EventID  string      `json:"event_id"`
	Status   string      `json:"status"`
	StartsAt time.Time   `json:"starts_at"`
	EndsAt   time.Time   `json:"ends_at"`
	Tally    []TallyItem `json:"tally,omitempty"`
}

type TallyItem struct {
	CandidateID string    `json:"candidate_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Votes       int       `json:"votes"`
	Rank        int       `json:"rank"`
}

type TallyResponse struct {
	EventID string         `json:"event_id"`
	Counts  map[string]int `json:"counts"`
}

type CandidateBoardResponse struct {
	EventID    string      `json:"event_id"`
	Status     string      `json:"status"`
	StartsAt   *time.Time  `json:"starts_at,omitempty"`
	EndsAt     *time.Time  `json:"ends_at,omitempty"`
	TotalVotes int         `json:"total_votes"`
	Items      []TallyItem `json:"items"`
}
