package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/application"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/entities"
	domainerrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/errors"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/ports"
)

type RespondCommand struct {
	EventID string
	UserID  string
	Status  string
}

type RespondResult struct {
	Rsvp     entities.Rsvp
	Replaced bool
}

// RespondUseCase records attendance responses. Responses are accepted only
// after the scheduling engine has fixed the event's time and the consumer has
// opened the rsvp window.
type RespondUseCase struct {
	Rsvps   ports.RsvpRepository
	Windows ports.WindowRepository
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func (uc RespondUseCase) Respond(ctx context.Context, cmd RespondCommand) (RespondResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	eventID := strings.TrimSpace(cmd.EventID)
	userID := strings.TrimSpace(cmd.UserID)
	status := strings.ToLower(strings.TrimSpace(cmd.Status))
	if eventID == "" || userID == "" {
		logger.Warn("rsvp respond validation failed",
			"event", "rsvp_respond_validation_failed",
			"module", "social-coordination/rsvp-service",
			"layer", "application",
			"event_id", eventID,
			"user_id", userID,
		)
		return RespondResult{}, domainerrors.ErrInvalidRsvpInput
	}
	if !entities.IsSupportedRsvpStatus(status) {
		return RespondResult{}, domainerrors.ErrInvalidRsvpStatus
	}

	if _, open, err := uc.Windows.GetWindow(ctx, eventID); err != nil {
		return RespondResult{}, err
	} else if !open {
		return RespondResult{}, domainerrors.ErrRsvpNotOpen
	}

	now := uc.now()
	rsvp := entities.Rsvp{
		EventID:   eventID,
		UserID:    userID,
		Status:    entities.RsvpStatus(status),
		CreatedAt: now,
		UpdatedAt: now,
	}
	result := RespondResult{}
	if existing, found, err := uc.Rsvps.GetRsvpByUser(ctx, eventID, userID); err != nil {
		return RespondResult{}, err
	} else if found {
		rsvp.RsvpID = existing.RsvpID
		rsvp.CreatedAt = existing.CreatedAt
		result.Replaced = true
	} else {
		rsvpID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return RespondResult{}, err
		}
		rsvp.RsvpID = rsvpID
	}
	if err := uc.Rsvps.UpsertRsvp(ctx, rsvp); err != nil {
		return RespondResult{}, err
	}
	result.Rsvp = rsvp

	logger.Info("rsvp recorded",
		"event", "rsvp_recorded",
		"module", "social-coordination/rsvp-service",
		"layer", "application",
		"event_id", eventID,
		"user_id", userID,
		"status", status,
		"replaced", result.Replaced,
	)
	return result, nil
}

func (uc RespondUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
