package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/application"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/entities"
	domainerrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/errors"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/ports"
)

// ProposeCandidateCommand is the write-model input for proposing a candidate
// time on a draft event.
type ProposeCandidateCommand struct {
	EventID    string
	ProposerID string
	StartTime  time.Time
	EndTime    time.Time
}

type RemoveCandidateCommand struct {
	EventID     string
	CandidateID string
	ActorID     string
}

// CandidateUseCase owns the candidate registry: proposing time slots while an
// event is in draft and removing slots nobody has voted for.
type CandidateUseCase struct {
	Events     ports.EventRepository
	Candidates ports.CandidateRepository
	Votes      ports.VoteRepository
	Members    ports.MembershipChecker
	Tx         ports.TxRunner
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Propose adds a candidate time to a draft event. Exact duplicates of an
// existing range are rejected; partial overlap between candidates is allowed.
func (uc CandidateUseCase) Propose(ctx context.Context, cmd ProposeCandidateCommand) (entities.CandidateTime, error) {
	logger := application.ResolveLogger(uc.Logger)
	eventID := strings.TrimSpace(cmd.EventID)
	proposerID := strings.TrimSpace(cmd.ProposerID)
	if eventID == "" || proposerID == "" {
		logger.Warn("candidate propose validation failed",
			"event", "scheduling_candidate_propose_validation_failed",
			"module", "social-coordination/scheduling-engine",
			"layer", "application",
			"event_id", eventID,
			"proposer_id", proposerID,
		)
		return entities.CandidateTime{}, domainerrors.ErrInvalidSchedulingInput
	}
	candidate := entities.CandidateTime{
		EventID:    eventID,
		StartTime:  cmd.StartTime.UTC(),
		EndTime:    cmd.EndTime.UTC(),
		ProposedBy: proposerID,
	}
	if !candidate.ValidRange() {
		return entities.CandidateTime{}, domainerrors.ErrInvalidCandidateRange
	}

	var saved entities.CandidateTime
	err := uc.Tx.InTx(ctx, func(txCtx context.Context) error {
		event, err := uc.Events.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if !event.IsDraft() {
			return domainerrors.ErrEventNotDraft
		}
		if ok, err := uc.Members.IsMember(txCtx, event.CircleID, proposerID); err != nil {
			return err
		} else if !ok {
			return domainerrors.ErrNotCircleMember
		}

		candidate.CreatedAt = uc.now()
		existing, err := uc.Candidates.ListCandidatesByEvent(txCtx, eventID)
		if err != nil {
			return err
		}
		for _, other := range existing {
			if candidate.SameRange(other) {
				return domainerrors.ErrDuplicateCandidate
			}
		}

		candidateID, err := uc.IDGen.NewID(txCtx)
		if err != nil {
			return err
		}
		candidate.CandidateID = candidateID
		if err := uc.Candidates.SaveCandidate(txCtx, candidate); err != nil {
			return err
		}
		saved = candidate
		return nil
	})
	if err != nil {
		return entities.CandidateTime{}, err
	}

	logger.Info("candidate time proposed",
		"event", "scheduling_candidate_proposed",
		"module", "social-coordination/scheduling-engine",
		"layer", "application",
		"event_id", eventID,
		"candidate_id", saved.CandidateID,
		"proposer_id", proposerID,
		"start_time", saved.StartTime.Format(time.RFC3339),
		"end_time", saved.EndTime.Format(time.RFC3339),
	)
	return saved, nil
}

// Remove deletes a candidate from a draft event. Candidates that already
// collected votes stay put so voters are never silently orphaned.
func (uc CandidateUseCase) Remove(ctx context.Context, cmd RemoveCandidateCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	eventID := strings.TrimSpace(cmd.EventID)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	actorID := strings.TrimSpace(cmd.ActorID)
	if eventID == "" || candidateID == "" || actorID == "" {
		return domainerrors.ErrInvalidSchedulingInput
	}

	err := uc.Tx.InTx(ctx, func(txCtx context.Context) error {
		event, err := uc.Events.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if !event.IsDraft() {
			return domainerrors.ErrEventNotDraft
		}
		candidate, err := uc.Candidates.GetCandidate(txCtx, candidateID)
		if err != nil {
			return err
		}
		if candidate.EventID != eventID {
			return domainerrors.ErrCandidateNotFound
		}
		if ok, err := uc.Members.IsMember(txCtx, event.CircleID, actorID); err != nil {
			return err
		} else if !ok {
			return domainerrors.ErrNotCircleMember
		}
		votes, err := uc.Votes.CountVotesForCandidate(txCtx, candidateID)
		if err != nil {
			return err
		}
		if votes > 0 {
			return domainerrors.ErrCandidateHasVotes
		}
		return uc.Candidates.DeleteCandidate(txCtx, candidateID)
	})
	if err != nil {
		return err
	}

	logger.Info("candidate time removed",
		"event", "scheduling_candidate_removed",
		"module", "social-coordination/scheduling-engine",
		"layer", "application",
		"event_id", eventID,
		"candidate_id", candidateID,
		"actor_id", actorID,
	)
	return nil
}

func (uc CandidateUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
