package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bingoo-app/tournament-engine/live"
	"github.com/bingoo-app/tournament-engine/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client is served from a different origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebsocketHandler struct {
	hub               *live.Hub
	tournamentService *services.TournamentService
	logger            *slog.Logger
}

func NewWebsocketHandler(hub *live.Hub, ts *services.TournamentService, logger *slog.Logger) *WebsocketHandler {
	return &WebsocketHandler{hub: hub, tournamentService: ts, logger: logger}
}

// ServeTournamentWS handles GET /ws/tournaments/{tournamentID}: upgrades
// the connection and subscribes it to that tournament's room.
func (h *WebsocketHandler) ServeTournamentWS(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("missing tournamentID"))
		return
	}

	if _, err := h.tournamentService.GetByID(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			slog.String("category", services.LogCategoryAPI),
			slog.String("tournament_id", tournamentID),
			slog.String("error", err.Error()),
		)
		return
	}

	client := live.NewClient(h.hub, conn, tournamentID)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
