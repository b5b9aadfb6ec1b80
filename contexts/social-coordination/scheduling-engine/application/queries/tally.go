package queries

import (
	"context"
	"strings"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/entities"
	domainerrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/errors"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/ports"
)

// CandidateBoard is the read model for the candidate listing: the event, its
// candidates ranked by the current tally, and the total ballots cast.
type CandidateBoard struct {
	Event      entities.Event
	Candidates []entities.CandidateTally
	TotalVotes int
}

type TallyUseCase struct {
	Events     ports.EventRepository
	Candidates ports.CandidateRepository
	Votes      ports.VoteRepository
}

func (uc TallyUseCase) CandidateBoard(ctx context.Context, eventID string) (CandidateBoard, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return CandidateBoard{}, domainerrors.ErrInvalidSchedulingInput
	}
	event, err := uc.Events.GetEvent(ctx, eventID)
	if err != nil {
		return CandidateBoard{}, err
	}
	candidates, err := uc.Candidates.ListCandidatesByEvent(ctx, eventID)
	if err != nil {
		return CandidateBoard{}, err
	}
	counts, err := uc.Votes.CountVotesByCandidate(ctx, eventID)
	if err != nil {
		return CandidateBoard{}, err
	}
	return CandidateBoard{
		Event:      event,
		Candidates: entities.RankCandidates(candidates, counts),
		TotalVotes: entities.TotalVotes(candidates, counts),
	}, nil
}

// TallyRaw exposes the per-candidate vote counts without ranking, for callers
// that only need the snapshot.
func (uc TallyUseCase) TallyRaw(ctx context.Context, eventID string) (map[string]int, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, domainerrors.ErrInvalidSchedulingInput
	}
	if _, err := uc.Events.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return uc.Votes.CountVotesByCandidate(ctx, eventID)
}
