package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	rsvpservice "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service"
	rsvperrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/domain/errors"
	rsvphttp "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/transport/http"
	schedulingengine "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine"
	schedulingerrors "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/errors"
	schedulinghttp "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/transport/http"

	_ "github.com/Z3r0J/togetherly-backend-sub001/internal/platform/httpserver/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	scheduling schedulingengine.Module
	rsvp       rsvpservice.Module
}

func New(
	scheduling schedulingengine.Module,
	rsvp rsvpservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		scheduling: scheduling,
		rsvp:       rsvp,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/v1/events/{event_id}/candidates", s.handleProposeTime)
	s.mux.HandleFunc("GET /api/v1/events/{event_id}/candidates", s.handleListCandidates)
	s.mux.HandleFunc("DELETE /api/v1/events/{event_id}/candidates/{candidate_id}", s.handleRemoveCandidate)

	s.mux.HandleFunc("GET /api/v1/events/{event_id}/tally", s.handleTally)

	s.mux.HandleFunc("POST /api/v1/events/{event_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("DELETE /api/v1/events/{event_id}/votes", s.handleRetractVote)

	s.mux.HandleFunc("POST /api/v1/events/{event_id}/lock", s.handleLockEvent)
	s.mux.HandleFunc("POST /api/v1/events/{event_id}/finalize", s.handleFinalizeEvent)

	s.mux.HandleFunc("POST /api/v1/events/{event_id}/rsvp", s.handleRespond)
	s.mux.HandleFunc("GET /api/v1/events/{event_id}/rsvps", s.handleListResponses)
}

func (s *Server) handleProposeTime(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeSchedulingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req schedulinghttp.ProposeTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSchedulingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.scheduling.Handler.ProposeTimeHandler(r.Context(), r.PathValue("event_id"), userID, req)
	if err != nil {
		writeSchedulingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.scheduling.Handler.ListCandidatesHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeSchedulingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveCandidate(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeSchedulingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	if err := s.scheduling.Handler.RemoveCandidateHandler(r.Context(), r.PathValue("event_id"), r.PathValue("candidate_id"), userID); err != nil {
		writeSchedulingDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	resp, err := s.scheduling.Handler.TallyHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeSchedulingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeSchedulingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req schedulinghttp.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSchedulingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.scheduling.Handler.VoteHandler(r.Context(), r.PathValue("event_id"), userID, req)
	if err != nil {
		writeSchedulingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetractVote(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeSchedulingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	if err := s.scheduling.Handler.RetractVoteHandler(r.Context(), r.PathValue("event_id"), userID); err != nil {
		writeSchedulingDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLockEvent(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeSchedulingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req schedulinghttp.LockEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSchedulingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.scheduling.Handler.LockEventHandler(r.Context(), r.PathValue("event_id"), userID, req)
	if err != nil {
		writeSchedulingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFinalizeEvent(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeSchedulingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	resp, err := s.scheduling.Handler.FinalizeEventHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeSchedulingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeRsvpError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req rsvphttp.RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRsvpError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.rsvp.Handler.RespondHandler(r.Context(), r.PathValue("event_id"), userID, req)
	if err != nil {
		writeRsvpDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListResponses(w http.ResponseWriter, r *http.Request) {
	resp, err := s.rsvp.Handler.ListResponsesHandler(r.Context(), r.PathValue("event_id"))
	if err != nil {
		writeRsvpDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSchedulingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedulingerrors.ErrEventNotFound):
		writeSchedulingError(w, http.StatusNotFound, "event_not_found", err.Error())
	case errors.Is(err, schedulingerrors.ErrCandidateNotFound):
		writeSchedulingError(w, http.StatusNotFound, "candidate_not_found", err.Error())
	case errors.Is(err, schedulingerrors.ErrEventNotDraft),
		errors.Is(err, schedulingerrors.ErrAlreadyScheduled):
		writeSchedulingError(w, http.StatusConflict, "event_already_scheduled", err.Error())
	case errors.Is(err, schedulingerrors.ErrDuplicateCandidate):
		writeSchedulingError(w, http.StatusConflict, "duplicate_candidate", err.Error())
	case errors.Is(err, schedulingerrors.ErrCandidateHasVotes):
		writeSchedulingError(w, http.StatusConflict, "candidate_has_votes", err.Error())
	case errors.Is(err, schedulingerrors.ErrConflict):
		writeSchedulingError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, schedulingerrors.ErrNotCircleMember):
		writeSchedulingError(w, http.StatusForbidden, "not_circle_member", err.Error())
	case errors.Is(err, schedulingerrors.ErrNotEventOwner):
		writeSchedulingError(w, http.StatusForbidden, "not_event_owner", err.Error())
	case errors.Is(err, schedulingerrors.ErrInvalidSchedulingInput),
		errors.Is(err, schedulingerrors.ErrInvalidCandidateRange):
		writeSchedulingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, schedulingerrors.ErrNoCandidates):
		writeSchedulingError(w, http.StatusUnprocessableEntity, "no_candidates", err.Error())
	case errors.Is(err, schedulingerrors.ErrNoVotes):
		writeSchedulingError(w, http.StatusUnprocessableEntity, "no_votes", err.Error())
	default:
		writeSchedulingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRsvpDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rsvperrors.ErrInvalidRsvpInput),
		errors.Is(err, rsvperrors.ErrInvalidRsvpStatus):
		writeRsvpError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, rsvperrors.ErrRsvpNotOpen):
		writeRsvpError(w, http.StatusConflict, "rsvp_not_open", err.Error())
	case errors.Is(err, rsvperrors.ErrRsvpNotFound):
		writeRsvpError(w, http.StatusNotFound, "rsvp_not_found", err.Error())
	case errors.Is(err, rsvperrors.ErrConflict):
		writeRsvpError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeRsvpError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSchedulingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, schedulinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeRsvpError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, rsvphttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
