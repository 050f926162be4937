package handlers

import (
	"errors"
	"net/http"

	"github.com/bingoo-app/tournament-engine/middleware"
	"github.com/bingoo-app/tournament-engine/services"
	"github.com/go-chi/chi/v5"
)

type ParticipantHandler struct {
	entryService *services.EntryService
}

func NewParticipantHandler(es *services.EntryService) *ParticipantHandler {
	return &ParticipantHandler{entryService: es}
}

// joinResponse is the platform's join contract: a flag plus a
// user-facing message.
type joinResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JoinHandler handles POST /tournaments/{tournamentID}/join. The user
// is taken from the bearer token, never from the body.
func (h *ParticipantHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("missing tournamentID"))
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required to join a tournament")
		return
	}

	if _, err := h.entryService.Join(r.Context(), tournamentID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrTournamentNotFound):
			notFoundResponse(w, r)
		case errors.Is(err, services.ErrRegistrationClosed),
			errors.Is(err, services.ErrTournamentFull),
			errors.Is(err, services.ErrAlreadyJoined),
			errors.Is(err, services.ErrInsufficientPoints):
			// Expected business outcomes use the joinResponse shape so
			// the client can show the message as-is.
			if writeErr := writeJSON(w, http.StatusOK, joinResponse{Success: false, Message: err.Error()}, nil); writeErr != nil {
				serverErrorResponse(w, r, writeErr)
			}
		default:
			mapServiceErrorToHTTP(w, r, err)
		}
		return
	}

	if err := writeJSON(w, http.StatusOK, joinResponse{Success: true, Message: "joined tournament"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
