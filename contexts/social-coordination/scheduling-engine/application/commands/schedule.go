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

const (
	EventLockedTopic    = "event.locked"
	EventFinalizedTopic = "event.finalized"
)

type LockEventCommand struct {
	EventID     string
	CandidateID string
	ActorID     string
}

type FinalizeEventCommand struct {
	EventID string
}

// ScheduleResult reports the terminal status and the window that was fixed,
// plus the full ranked tally when finalization picked the winner.
type ScheduleResult struct {
	EventID  string
	Status   entities.EventStatus
	StartsAt time.Time
	EndsAt   time.Time
	Tally    []entities.CandidateTally
}

// ScheduleUseCase owns the draft -> locked/finalized transitions. Both paths
// write the schedule through a compare-and-set on the current status, so
// concurrent lock/finalize attempts resolve to exactly one winner.
type ScheduleUseCase struct {
	Events     ports.EventRepository
	Candidates ports.CandidateRepository
	Votes      ports.VoteRepository
	Outbox     ports.OutboxWriter
	Tx         ports.TxRunner
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Policy     entities.FinalizePolicy
	Logger     *slog.Logger
}

// Lock is the organizer override: the owner picks the winning candidate
// directly, bypassing the tally.
func (uc ScheduleUseCase) Lock(ctx context.Context, cmd LockEventCommand) (ScheduleResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	eventID := strings.TrimSpace(cmd.EventID)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	actorID := strings.TrimSpace(cmd.ActorID)
	if eventID == "" || candidateID == "" || actorID == "" {
		logger.Warn("event lock validation failed",
			"event", "scheduling_lock_validation_failed",
			"module", "social-coordination/scheduling-engine",
			"layer", "application",
			"event_id", eventID,
			"candidate_id", candidateID,
			"actor_id", actorID,
		)
		return ScheduleResult{}, domainerrors.ErrInvalidSchedulingInput
	}

	var result ScheduleResult
	err := uc.Tx.InTx(ctx, func(txCtx context.Context) error {
		event, err := uc.Events.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if !event.IsDraft() {
			return domainerrors.ErrAlreadyScheduled
		}
		if event.OwnerID != actorID {
			return domainerrors.ErrNotEventOwner
		}
		candidate, err := uc.Candidates.GetCandidate(txCtx, candidateID)
		if err != nil {
			return err
		}
		if candidate.EventID != eventID {
			return domainerrors.ErrCandidateNotFound
		}

		now := uc.now()
		applied, err := uc.Events.TransitionSchedule(
			txCtx, eventID, entities.EventStatusLocked,
			candidate.StartTime, candidate.EndTime, now,
		)
		if err != nil {
			return err
		}
		if !applied {
			return domainerrors.ErrAlreadyScheduled
		}

		result = ScheduleResult{
			EventID:  eventID,
			Status:   entities.EventStatusLocked,
			StartsAt: candidate.StartTime.UTC(),
			EndsAt:   candidate.EndTime.UTC(),
		}
		return uc.appendScheduleEvent(txCtx, EventLockedTopic, result, map[string]any{
			"candidate_id": candidateID,
			"locked_by":    actorID,
		})
	})
	if err != nil {
		return ScheduleResult{}, err
	}

	logger.Info("event locked",
		"event", "scheduling_event_locked",
		"module", "social-coordination/scheduling-engine",
		"layer", "application",
		"event_id", eventID,
		"candidate_id", candidateID,
		"actor_id", actorID,
		"starts_at", result.StartsAt.Format(time.RFC3339),
		"ends_at", result.EndsAt.Format(time.RFC3339),
	)
	return result, nil
}

// Finalize runs the tally and fixes the winning candidate's window. On
// ErrNoCandidates/ErrNoVotes the event stays draft so callers can retry once
// more input arrives, or fall back to a manual lock.
func (uc ScheduleUseCase) Finalize(ctx context.Context, cmd FinalizeEventCommand) (ScheduleResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	eventID := strings.TrimSpace(cmd.EventID)
	if eventID == "" {
		return ScheduleResult{}, domainerrors.ErrInvalidSchedulingInput
	}

	var result ScheduleResult
	err := uc.Tx.InTx(ctx, func(txCtx context.Context) error {
		event, err := uc.Events.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if !event.IsDraft() {
			return domainerrors.ErrAlreadyScheduled
		}

		candidates, err := uc.Candidates.ListCandidatesByEvent(txCtx, eventID)
		if err != nil {
			return err
		}
		counts, err := uc.Votes.CountVotesByCandidate(txCtx, eventID)
		if err != nil {
			return err
		}
		tally, err := selectWinner(candidates, counts, uc.Policy)
		if err != nil {
			return err
		}

		now := uc.now()
		winner := tally.Winner.Candidate
		applied, err := uc.Events.TransitionSchedule(
			txCtx, eventID, entities.EventStatusFinalized,
			winner.StartTime, winner.EndTime, now,
		)
		if err != nil {
			return err
		}
		if !applied {
			return domainerrors.ErrAlreadyScheduled
		}

		result = ScheduleResult{
			EventID:  eventID,
			Status:   entities.EventStatusFinalized,
			StartsAt: winner.StartTime.UTC(),
			EndsAt:   winner.EndTime.UTC(),
			Tally:    tally.Ranked,
		}
		return uc.appendScheduleEvent(txCtx, EventFinalizedTopic, result, map[string]any{
			"candidate_id":  winner.CandidateID,
			"winning_votes": tally.Winner.Votes,
		})
	})
	if err != nil {
		return ScheduleResult{}, err
	}

	logger.Info("event finalized",
		"event", "scheduling_event_finalized",
		"module", "social-coordination/scheduling-engine",
		"layer", "application",
		"event_id", eventID,
		"starts_at", result.StartsAt.Format(time.RFC3339),
		"ends_at", result.EndsAt.Format(time.RFC3339),
		"candidate_count", len(result.Tally),
	)
	return result, nil
}

// selectWinner ranks the candidates and applies the finalize policy: highest
// count wins, ties break by earliest start time, then earliest creation, then
// candidate id.
func selectWinner(
	candidates []entities.CandidateTime,
	counts map[string]int,
	policy entities.FinalizePolicy,
) (entities.TallyResult, error) {
	if len(candidates) == 0 {
		return entities.TallyResult{}, domainerrors.ErrNoCandidates
	}
	if policy.RequireVotes {
		minVotes := policy.MinVotes
		if minVotes <= 0 {
			minVotes = 1
		}
		if entities.TotalVotes(candidates, counts) < minVotes {
			return entities.TallyResult{}, domainerrors.ErrNoVotes
		}
	}
	ranked := entities.RankCandidates(candidates, counts)
	return entities.TallyResult{
		Winner: ranked[0],
		Ranked: ranked,
	}, nil
}

func (uc ScheduleUseCase) appendScheduleEvent(
	ctx context.Context,
	eventType string,
	result ScheduleResult,
	metadata map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	envelopeID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"event_id":  result.EventID,
		"status":    string(result.Status),
		"starts_at": result.StartsAt.Format(time.RFC3339),
		"ends_at":   result.EndsAt.Format(time.RFC3339),
	}
	for key, value := range metadata {
		data[key] = value
	}
	envelope, err := newSchedulingEnvelope(envelopeID, eventType, result.EventID, uc.now(), data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc ScheduleUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
