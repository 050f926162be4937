package routes

import (
	"net/http"

	"github.com/bingoo-app/tournament-engine/handlers"
	"github.com/bingoo-app/tournament-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Tournament  *handlers.TournamentHandler
	Participant *handlers.ParticipantHandler
	Score       *handlers.ScoreHandler
	Leaderboard *handlers.LeaderboardHandler
	Prize       *handlers.PrizeHandler
	Payout      *handlers.PayoutHandler
	Websocket   *handlers.WebsocketHandler
	Health      *handlers.HealthHandler
}

func InitRoutes(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.HealthzHandler)

	router.Route("/tournaments", func(r chi.Router) {
		// Public read surface.
		r.Get("/", h.Tournament.ListHandler)
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/leaderboard", h.Leaderboard.GetLeaderboardHandler)

		// Player actions.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Post("/{tournamentID}/join", h.Participant.JoinHandler)
		})

		// Score reporting comes from the game backend only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.RequireRole("service", "admin"))
			r.Post("/{tournamentID}/scores", h.Score.AddScoreHandler)
		})

		// Admin surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.RequireRole("admin"))
			r.Post("/", h.Tournament.CreateHandler)
			r.Post("/{tournamentID}/cancel", h.Tournament.CancelHandler)
			r.Get("/{tournamentID}/payouts", h.Payout.ListPayoutsHandler)
		})
	})

	router.Get("/prizes/{prizeID}", h.Prize.GetPrizeHandler)

	router.Get("/ws/tournaments/{tournamentID}", h.Websocket.ServeTournamentWS)

	return router
}
