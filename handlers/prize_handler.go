package handlers

import (
	"errors"
	"net/http"

	"github.com/bingoo-app/tournament-engine/services"
	"github.com/go-chi/chi/v5"
)

type PrizeHandler struct {
	prizeService *services.PrizeService
}

func NewPrizeHandler(ps *services.PrizeService) *PrizeHandler {
	return &PrizeHandler{prizeService: ps}
}

// GetPrizeHandler handles GET /prizes/{prizeID}.
func (h *PrizeHandler) GetPrizeHandler(w http.ResponseWriter, r *http.Request) {
	prizeID := chi.URLParam(r, "prizeID")
	if prizeID == "" {
		badRequestResponse(w, r, errors.New("missing prizeID"))
		return
	}

	prize, err := h.prizeService.GetByID(r.Context(), prizeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, prize, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
