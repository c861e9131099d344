package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/projectklase/comunika-cards/api"
	"github.com/projectklase/comunika-cards/cardengine"
	"github.com/projectklase/comunika-cards/cardengine/battle"
	"github.com/projectklase/comunika-cards/cardengine/collection"
	"github.com/projectklase/comunika-cards/cardengine/database"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories"
	"github.com/projectklase/comunika-cards/cardengine/decks"
	"github.com/projectklase/comunika-cards/cardengine/economy/packs"
	"github.com/projectklase/comunika-cards/cardengine/economy/utils"
	"github.com/projectklase/comunika-cards/cardengine/logger"
	"github.com/projectklase/comunika-cards/cardengine/services"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Initialize custom logger
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Comunika card engine",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := cardengine.LoadConfig(*path)
	if err != nil {
		logger.LogError("Failed to load configuration", err)
		os.Exit(-1)
	}
	customHandler.SetLevel(cfg.Log.Level)
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		logger.LogError("Database connection failed", err,
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		logger.LogError("Failed to initialize database schema", err,
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	// Artwork storage is optional; the API serves cards without image
	// URLs when it is not configured.
	var spacesService *services.SpacesService
	if cfg.Spaces.Enabled() {
		spacesService, err = services.NewSpacesService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.CardRoot,
		)
		if err != nil {
			logger.LogError("Failed to initialize Spaces service", err)
			os.Exit(-1)
		}
	} else {
		logger.LogSystem("Spaces not configured, card artwork disabled")
	}

	cardRepo := repositories.NewCardRepository(db.BunDB())
	userRepo := repositories.NewUserRepository(db.BunDB())
	userCardRepo := repositories.NewUserCardRepository(db.BunDB())
	packEventRepo := repositories.NewPackEventRepository(db.BunDB())
	deckRepo := repositories.NewDeckRepository(db.BunDB())
	battleRepo := repositories.NewBattleRepository(db.BunDB())

	txManager := utils.NewTransactionManager(db.BunDB())
	drawer := packs.NewDrawer(rand.NewSource(time.Now().UnixNano()))

	leaderboardImages, err := battle.NewLeaderboardImageService()
	if err != nil {
		logger.LogError("Failed to initialize leaderboard image service", err)
		os.Exit(-1)
	}

	app := &api.API{
		Cards:             cardRepo,
		Users:             userRepo,
		PackEvents:        packEventRepo,
		Collection:        collection.NewService(cardRepo, userCardRepo, txManager),
		Decks:             decks.NewService(deckRepo, cardRepo, userCardRepo),
		Packs:             packs.NewOpener(userRepo, cardRepo, userCardRepo, packEventRepo, txManager, drawer),
		Battles:           battle.NewService(battleRepo, deckRepo),
		LeaderboardImages: leaderboardImages,
		Spaces:            spacesService,
		Health:            db.Health,
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           app.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		slog.Info("HTTP server listening",
			slog.String("type", "http"),
			slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		slog.Info("Shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.LogError("Server exited with error", err)
		os.Exit(-1)
	}
	logger.LogSystem("Shutdown complete")
}
