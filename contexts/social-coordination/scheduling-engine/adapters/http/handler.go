package httpadapter

import (
	"context"
	"log/slog"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/application/commands"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/application/queries"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/entities"
	httptransport "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/transport/http"
)

type Handler struct {
	Candidates commands.CandidateUseCase
	Votes      commands.VoteUseCase
	Schedule   commands.ScheduleUseCase
	Tally      queries.TallyUseCase
	Logger     *slog.Logger
}

func (h Handler) ProposeTimeHandler(
	ctx context.Context,
	eventID string,
	userID string,
	req httptransport.ProposeTimeRequest,
) (httptransport.CandidateResponse, error) {
	candidate, err := h.Candidates.Propose(ctx, commands.ProposeCandidateCommand{
		EventID:    eventID,
		ProposerID: userID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return httptransport.CandidateResponse{
		CandidateID: candidate.CandidateID,
		EventID:     candidate.EventID,
		StartTime:   candidate.StartTime,
		EndTime:     candidate.EndTime,
		ProposedBy:  candidate.ProposedBy,
	}, nil
}

func (h Handler) RemoveCandidateHandler(ctx context.Context, eventID string, candidateID string, userID string) error {
	return h.Candidates.Remove(ctx, commands.RemoveCandidateCommand{
		EventID:     eventID,
		CandidateID: candidateID,
		ActorID:     userID,
	})
}

func (h Handler) VoteHandler(
	ctx context.Context,
	eventID string,
	userID string,
	req httptransport.VoteRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Votes.Cast(ctx, commands.CastVoteCommand{
		EventID:     eventID,
		CandidateID: req.CandidateID,
		VoterID:     userID,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		VoteID:      result.Vote.VoteID,
		EventID:     result.Vote.EventID,
		CandidateID: result.Vote.CandidateID,
		VoterID:     result.Vote.VoterID,
		Replaced:    result.Replaced,
	}, nil
}

func (h Handler) RetractVoteHandler(ctx context.Context, eventID string, userID string) error {
	return h.Votes.Retract(ctx, commands.RetractVoteCommand{
		EventID: eventID,
		VoterID: userID,
	})
}

func (h Handler) LockEventHandler(
	ctx context.Context,
	eventID string,
	userID string,
	req httptransport.LockEventRequest,
) (httptransport.ScheduleResponse, error) {
	result, err := h.Schedule.Lock(ctx, commands.LockEventCommand{
		EventID:     eventID,
		CandidateID: req.CandidateID,
		ActorID:     userID,
	})
	if err != nil {
		return httptransport.ScheduleResponse{}, err
	}
	return mapScheduleResult(result), nil
}

func (h Handler) FinalizeEventHandler(ctx context.Context, eventID string) (httptransport.ScheduleResponse, error) {
	result, err := h.Schedule.Finalize(ctx, commands.FinalizeEventCommand{
		EventID: eventID,
	})
	if err != nil {
		return httptransport.ScheduleResponse{}, err
	}
	return mapScheduleResult(result), nil
}

func (h Handler) ListCandidatesHandler(ctx context.Context, eventID string) (httptransport.CandidateBoardResponse, error) {
	board, err := h.Tally.CandidateBoard(ctx, eventID)
	if err != nil {
		return httptransport.CandidateBoardResponse{}, err
	}
	resp := httptransport.CandidateBoardResponse{
		EventID:    board.Event.EventID,
		Status:     string(board.Event.Status),
		TotalVotes: board.TotalVotes,
		Items:      mapTally(board.Candidates),
	}
	if window, ok := board.Event.Scheduled(); ok {
		startsAt := window.StartsAt
		endsAt := window.EndsAt
		resp.StartsAt = &startsAt
		resp.EndsAt = &endsAt
	}
	return resp, nil
}

func (h Handler) TallyHandler(ctx context.Context, eventID string) (httptransport.TallyResponse, error) {
	counts, err := h.Tally.TallyRaw(ctx, eventID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return httptransport.TallyResponse{
		EventID: eventID,
		Counts:  counts,
	}, nil
}

func mapScheduleResult(result commands.ScheduleResult) httptransport.ScheduleResponse {
	return httptransport.ScheduleResponse{
		EventID:  result.EventID,
		Status:   string(result.Status),
		StartsAt: result.StartsAt,
		EndsAt:   result.EndsAt,
		Tally:    mapTally(result.Tally),
	}
}

func mapTally(items []entities.CandidateTally) []httptransport.TallyItem {
	mapped := make([]httptransport.TallyItem, 0, len(items))
	for _, item := range items {
		mapped = append(mapped, httptransport.TallyItem{
			CandidateID: item.Candidate.CandidateID,
			StartTime:   item.Candidate.StartTime,
			EndTime:     item.Candidate.EndTime,
			Votes:       item.Votes,
			Rank:        item.Rank,
		})
	}
	return mapped
}
