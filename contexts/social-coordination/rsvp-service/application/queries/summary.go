package queries

import (
	"context"
	"strings"

	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/entities"
	domainerrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/errors"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/ports"
)

type SummaryUseCase struct {
	Rsvps ports.RsvpRepository
}

func (uc SummaryUseCase) EventResponses(ctx context.Context, eventID string) ([]entities.Rsvp, entities.RsvpSummary, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, entities.RsvpSummary{}, domainerrors.ErrInvalidRsvpInput
	}
	responses, err := uc.Rsvps.ListRsvpsByEvent(ctx, eventID)
	if err != nil {
		return nil, entities.RsvpSummary{}, err
	}
	summary := entities.RsvpSummary{EventID: eventID}
	for _, rsvp := range responses {
		switch rsvp.Status {
		case entities.RsvpStatusGoing:
			summary.Going++
		case entities.RsvpStatusMaybe:
			summary.Maybe++
		case entities.RsvpStatusDeclined:
			summary.Declined++
		}
	}
	return responses, summary, nil
}
