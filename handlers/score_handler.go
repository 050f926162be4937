package handlers

import (
	"errors"
	"net/http"

	"github.com/bingoo-app/tournament-engine/services"
	"github.com/go-chi/chi/v5"
)

type ScoreHandler struct {
	scoreService *services.ScoreService
}

func NewScoreHandler(ss *services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: ss}
}

type addScoreRequest struct {
	UserID string `json:"userId"`
	Delta  int64  `json:"delta"`
}

type addScoreResponse struct {
	UserID string `json:"userId"`
	Score  int64  `json:"score"`
}

// AddScoreHandler handles POST /tournaments/{tournamentID}/scores.
// Only the game backend (service role) may report scores.
func (h *ScoreHandler) AddScoreHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("missing tournamentID"))
		return
	}

	var req addScoreRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.UserID == "" {
		badRequestResponse(w, r, errors.New("userId is required"))
		return
	}
	if req.Delta <= 0 {
		badRequestResponse(w, r, errors.New("delta must be positive"))
		return
	}

	score, err := h.scoreService.AddScore(r.Context(), tournamentID, req.UserID, req.Delta)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, addScoreResponse{UserID: req.UserID, Score: score}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
