package httpadapter

import (
	"context"
	"log/slog"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/application/commands"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/application/queries"
	httptransport "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/transport/http"
)

type Handler struct {
	Respond commands.RespondUseCase
	Summary queries.SummaryUseCase
	Logger  *slog.Logger
}

func (h Handler) RespondHandler(
	ctx context.Context,
	eventID string,
	userID string,
	req httptransport.RespondRequest,
) (httptransport.RsvpResponse, error) {
	result, err := h.Respond.Respond(ctx, commands.RespondCommand{
		EventID: eventID,
		UserID:  userID,
		Status:  req.Status,
	})
	if err != nil {
		return httptransport.RsvpResponse{}, err
	}
	return httptransport.RsvpResponse{
		RsvpID:   result.Rsvp.RsvpID,
		EventID:  result.Rsvp.EventID,
		UserID:   result.Rsvp.UserID,
		Status:   string(result.Rsvp.Status),
		Replaced: result.Replaced,
	}, nil
}

func (h Handler) ListResponsesHandler(ctx context.Context, eventID string) (httptransport.RsvpListResponse, error) {
	responses, summary, err := h.Summary.EventResponses(ctx, eventID)
	if err != nil {
		return httptransport.RsvpListResponse{}, err
	}
	items := make([]httptransport.RsvpItem, 0, len(responses))
	for _, rsvp := range responses {
		items = append(items, httptransport.RsvpItem{
			UserID:      rsvp.UserID,
			Status:      string(rsvp.Status),
			RespondedAt: rsvp.UpdatedAt,
		})
	}
	return httptransport.RsvpListResponse{
		EventID:  summary.EventID,
		Going:    summary.Going,
		Maybe:    summary.Maybe,
		Declined: summary.Declined,
		Items:    items,
	}, nil
}
