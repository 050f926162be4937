package live

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/bingoo-app/tournament-engine/models"
)

// Message is the envelope pushed to leaderboard viewers.
type Message struct {
	Type         string      `json:"type"` // "LEADERBOARD_UPDATED" | "TOURNAMENT_STATUS"
	TournamentID string      `json:"tournament_id"`
	Payload      interface{} `json:"payload"`
}

// Hub keeps one room of websocket clients per tournament and fans
// engine events out to them. It also implements services.LiveNotifier.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// broadcast sends a message to every client in the tournament's room.
// Slow clients are skipped rather than blocking the engine.
func (h *Hub) broadcast(tournamentID string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[tournamentID]
	if !ok {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal live message",
			slog.String("tournament_id", tournamentID),
			slog.Any("error", err),
		)
		return
	}

	for client := range clients {
		client.trySend(data)
	}
}

func (h *Hub) NotifyScoreUpdated(tournamentID, userID string, score int64) {
	h.broadcast(tournamentID, Message{
		Type:         "LEADERBOARD_UPDATED",
		TournamentID: tournamentID,
		Payload: map[string]interface{}{
			"user_id": userID,
			"score":   score,
		},
	})
}

func (h *Hub) NotifyStatusChanged(tournamentID string, status models.TournamentStatus) {
	h.broadcast(tournamentID, Message{
		Type:         "TOURNAMENT_STATUS",
		TournamentID: tournamentID,
		Payload: map[string]interface{}{
			"status": status,
		},
	})
}
