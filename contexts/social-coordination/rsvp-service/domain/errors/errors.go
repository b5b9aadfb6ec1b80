package errors

import "errors"

var (
	ErrInvalidRsvpInput  = errors.New("invalid rsvp input")
	ErrInvalidRsvpStatus = errors.New("unsupported rsvp status")
	ErrRsvpNotOpen       = errors.New("event is not open for rsvps")
	ErrRsvpNotFound      = errors.New("rsvp not found")
	ErrConflict          = errors.New("rsvp conflict")
)
