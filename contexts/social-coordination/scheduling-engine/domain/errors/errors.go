package errors

import "errors"

var (
	ErrInvalidSchedulingInput = errors.New("invalid scheduling input")
	ErrEventNotFound          = errors.New("event not found")
	ErrEventNotDraft          = errors.New("event is not in draft")
	ErrAlreadyScheduled       = errors.New("event is already scheduled")
	ErrCandidateNotFound      = errors.New("candidate time not found")
	ErrInvalidCandidateRange  = errors.New("candidate start must be before its end")
	ErrDuplicateCandidate     = errors.New("identical candidate time already proposed")
	ErrCandidateHasVotes      = errors.New("candidate time still has votes")
	ErrNotCircleMember        = errors.New("user is not a member of the circle")
	ErrNotEventOwner          = errors.New("only the event owner may lock a time")
	ErrNoCandidates           = errors.New("event has no candidate times")
	ErrNoVotes                = errors.New("event has no votes to tally")
	ErrConflict               = errors.New("scheduling conflict")
)
