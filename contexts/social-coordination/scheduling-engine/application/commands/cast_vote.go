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

type CastVoteCommand struct {
	EventID     string
	CandidateID string
	VoterID     string
}

type RetractVoteCommand struct {
	EventID string
	VoterID string
}

// CastVoteResult reports the stored vote and whether it replaced a prior vote
// by the same voter.
type CastVoteResult struct {
	Vote     entities.Vote
	Replaced bool
}

// VoteUseCase owns the vote ledger: one vote per (event, voter), replaced
// atomically on re-vote, frozen once the event leaves draft.
type VoteUseCase struct {
	Events     ports.EventRepository
	Candidates ports.CandidateRepository
	Votes      ports.VoteRepository
	Members    ports.MembershipChecker
	Tx         ports.TxRunner
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Cast records the voter's choice. A voter's prior vote for the same event is
// replaced in the same transaction, keyed by the (event_id, voter_id)
// uniqueness constraint.
func (uc VoteUseCase) Cast(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	eventID := strings.TrimSpace(cmd.EventID)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	voterID := strings.TrimSpace(cmd.VoterID)
	if eventID == "" || candidateID == "" || voterID == "" {
		logger.Warn("vote cast validation failed",
			"event", "scheduling_vote_cast_validation_failed",
			"module", "social-coordination/scheduling-engine",
			"layer", "application",
			"event_id", eventID,
			"candidate_id", candidateID,
			"voter_id", voterID,
		)
		return CastVoteResult{}, domainerrors.ErrInvalidSchedulingInput
	}

	var result CastVoteResult
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
		if ok, err := uc.Members.IsMember(txCtx, event.CircleID, voterID); err != nil {
			return err
		} else if !ok {
			return domainerrors.ErrNotCircleMember
		}

		now := uc.now()
		vote := entities.Vote{
			EventID:     eventID,
			CandidateID: candidateID,
			VoterID:     voterID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if existing, found, err := uc.Votes.GetVoteByVoter(txCtx, eventID, voterID); err != nil {
			return err
		} else if found {
			vote.VoteID = existing.VoteID
			vote.CreatedAt = existing.CreatedAt
			result.Replaced = true
		} else {
			voteID, err := uc.IDGen.NewID(txCtx)
			if err != nil {
				return err
			}
			vote.VoteID = voteID
		}
		if err := uc.Votes.UpsertVote(txCtx, vote); err != nil {
			return err
		}
		result.Vote = vote
		return nil
	})
	if err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "scheduling_vote_cast",
		"module", "social-coordination/scheduling-engine",
		"layer", "application",
		"event_id", eventID,
		"candidate_id", candidateID,
		"voter_id", voterID,
		"replaced", result.Replaced,
	)
	return result, nil
}

// Retract removes the voter's vote if present. A missing vote is a no-op
// success, not an error; retraction on a scheduled event fails like any other
// ledger write.
func (uc VoteUseCase) Retract(ctx context.Context, cmd RetractVoteCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	eventID := strings.TrimSpace(cmd.EventID)
	voterID := strings.TrimSpace(cmd.VoterID)
	if eventID == "" || voterID == "" {
		return domainerrors.ErrInvalidSchedulingInput
	}

	removed := false
	err := uc.Tx.InTx(ctx, func(txCtx context.Context) error {
		event, err := uc.Events.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if !event.IsDraft() {
			return domainerrors.ErrEventNotDraft
		}
		removed, err = uc.Votes.DeleteVoteByVoter(txCtx, eventID, voterID)
		return err
	})
	if err != nil {
		return err
	}

	logger.Info("vote retracted",
		"event", "scheduling_vote_retracted",
		"module", "social-coordination/scheduling-engine",
		"layer", "application",
		"event_id", eventID,
		"voter_id", voterID,
		"removed", removed,
	)
	return nil
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
