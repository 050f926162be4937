package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bingoo-app/tournament-engine/config"
	"github.com/bingoo-app/tournament-engine/db"
	"github.com/bingoo-app/tournament-engine/handlers"
	"github.com/bingoo-app/tournament-engine/live"
	"github.com/bingoo-app/tournament-engine/repositories"
	"github.com/bingoo-app/tournament-engine/routes"
	"github.com/bingoo-app/tournament-engine/services"
	"github.com/bingoo-app/tournament-engine/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DatabaseURL, 10*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()
	logger.Info("database connection established", slog.String("category", services.LogCategorySystem))

	var images storage.ImageResolver
	if cfg.R2BucketName != "" {
		images, err = storage.NewCloudflareR2Resolver(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
		})
		if err != nil {
			logger.Error("failed to initialize image storage", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	hub := live.NewHub(logger)
	go hub.Run()

	tournamentRepo := repositories.NewPostgresTournamentRepository(database)
	participantRepo := repositories.NewPostgresParticipantRepository(database)
	userRepo := repositories.NewPostgresUserRepository(database)
	payoutRepo := repositories.NewPostgresPayoutRepository(database)
	prizeRepo := repositories.NewPostgresPrizeRepository(database)
	transactor := repositories.NewSQLTransactor(database)

	rewardService := services.NewRewardService(transactor, tournamentRepo, participantRepo, userRepo, payoutRepo, logger)
	entryService := services.NewEntryService(transactor, tournamentRepo, participantRepo, userRepo, logger)
	scoreService := services.NewScoreService(tournamentRepo, participantRepo, hub, logger)
	leaderboardService := services.NewLeaderboardService(tournamentRepo, participantRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, rewardService, hub, logger)
	prizeService := services.NewPrizeService(prizeRepo, images, logger)
	sweeperService := services.NewSweeperService(tournamentRepo, participantRepo, rewardService, hub, logger)

	scheduler, err := services.NewSweepScheduler(cfg.SweepInterval, sweeperService, logger)
	if err != nil {
		logger.Error("failed to initialize sweep scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()

	router := routes.InitRoutes(routes.Handlers{
		Tournament:  handlers.NewTournamentHandler(tournamentService),
		Participant: handlers.NewParticipantHandler(entryService),
		Score:       handlers.NewScoreHandler(scoreService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		Prize:       handlers.NewPrizeHandler(prizeService),
		Payout:      handlers.NewPayoutHandler(rewardService),
		Websocket:   handlers.NewWebsocketHandler(hub, tournamentService, logger),
		Health:      handlers.NewHealthHandler(database),
	}, cfg.JWTSecretKey)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			slog.String("category", services.LogCategorySystem),
			slog.Int("port", cfg.ServerPort),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down", slog.String("category", services.LogCategorySystem))

	if err := scheduler.Stop(); err != nil {
		logger.Error("failed to stop sweep scheduler", slog.String("error", err.Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}

	logger.Info("server stopped", slog.String("category", services.LogCategorySystem))
}
