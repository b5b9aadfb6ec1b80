package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RespondRequest struct {
	Status string `json:"status"`
}

type RsvpResponse struct {
	RsvpID   string `json:"rsvp_id"`
	EventID  string `json:"event_id"`
	UserID   string `json:"user_id"`
	Status   string `json:"status"`
	Replaced bool   `json:"replaced"`
}

type RsvpItem struct {
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	RespondedAt time.Time `json:"responded_at"`
}

type RsvpListResponse struct {
	EventID  string     `json:"event_id"`
	Going    int        `json:"going"`
	Maybe    int        `json:"maybe"`
	Declined int        `json:"declined"`
	Items    []RsvpItem `json:"items"`
}
