package handlers

import (
	"errors"
	"net/http"

	"github.com/bingoo-app/tournament-engine/services"
	"github.com/go-chi/chi/v5"
)

type PayoutHandler struct {
	rewardService *services.RewardService
}

func NewPayoutHandler(rs *services.RewardService) *PayoutHandler {
	return &PayoutHandler{rewardService: rs}
}

// ListPayoutsHandler handles GET /tournaments/{tournamentID}/payouts.
// Admin-only audit view of who was credited what.
func (h *PayoutHandler) ListPayoutsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("missing tournamentID"))
		return
	}

	records, err := h.rewardService.ListPayouts(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, records, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
