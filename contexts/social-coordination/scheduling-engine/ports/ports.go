package ports

import (
	"context"
	"time"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/entities"
	contractsv1 "github.com/Z3r0J/togetherly-backend-sub001/contracts/gen/events/v1"
)

type EventRepository interface {
	GetEvent(ctx context.Context, eventID string) (entities.Event, error)
	// GetEventForUpdate reads the event while claiming it for the surrounding
	// transaction. Mutating use cases read through this so a concurrent
	// lock/finalize either commits before the read (the status check fails) or
	// waits until the mutation commits; a candidate or vote can never land on
	// an event that already left draft.
	GetEventForUpdate(ctx context.Context, eventID string) (entities.Event, error)
	// TransitionSchedule applies the draft -> locked/finalized transition as a
	// compare-and-set on the current status. It returns false when the event
	// already left draft, which is how the loser of a concurrent lock/finalize
	// race observes its defeat.
	TransitionSchedule(
		ctx context.Context,
		eventID string,
		to entities.EventStatus,
		startsAt time.Time,
		endsAt time.Time,
		updatedAt time.Time,
	) (bool, error)
}

type CandidateRepository interface {
	SaveCandidate(ctx context.Context, candidate entities.CandidateTime) error
	GetCandidate(ctx context.Context, candidateID string) (entities.CandidateTime, error)
	ListCandidatesByEvent(ctx context.Context, eventID string) ([]entities.CandidateTime, error)
	DeleteCandidate(ctx context.Context, candidateID string) error
}

type VoteRepository interface {
	// UpsertVote inserts the vote or replaces the voter's existing vote for the
	// same event. Backed by the (event_id, voter_id) uniqueness constraint so
	// a voter never holds two rows at once.
	UpsertVote(ctx context.Context, vote entities.Vote) error
	GetVoteByVoter(ctx context.Context, eventID string, voterID string) (entities.Vote, bool, error)
	DeleteVoteByVoter(ctx context.Context, eventID string, voterID string) (bool, error)
	CountVotesByCandidate(ctx context.Context, eventID string) (map[string]int, error)
	CountVotesForCandidate(ctx context.Context, candidateID string) (int, error)
}

// MembershipChecker is the external circle-membership collaborator. The engine
// reads it for authorization and never mutates membership.
type MembershipChecker interface {
	IsMember(ctx context.Context, circleID string, userID string) (bool, error)
}

// TxRunner scopes a function to a single persistence transaction. Repository
// calls made with the inner context join that transaction, so a failed
// operation never leaves partial state behind.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
