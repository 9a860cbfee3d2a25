package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xelth-com/shopdeskgo/internal/ai"
	"github.com/xelth-com/shopdeskgo/internal/buildinfo"
	"github.com/xelth-com/shopdeskgo/internal/config"
	"github.com/xelth-com/shopdeskgo/internal/database"
	"github.com/xelth-com/shopdeskgo/internal/handlers"
	"github.com/xelth-com/shopdeskgo/internal/logger"
	"github.com/xelth-com/shopdeskgo/internal/models"
	"github.com/xelth-com/shopdeskgo/internal/production"
	"github.com/xelth-com/shopdeskgo/internal/services/etsy"
	"github.com/xelth-com/shopdeskgo/internal/store"
	"github.com/xelth-com/shopdeskgo/internal/utils"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("shopdesk", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init("shopdesk", cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)
	log := logger.Logger

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// 3. Auto-Migrate Schema
	log.Info().Msg("🚀 Synchronizing database schema...")
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Warn().Err(err).Msg("⚠️ Migration warning")
	} else {
		log.Info().Msg("✅ Schema synchronized successfully")
	}

	cipher, err := utils.NewTokenCipher(cfg.EncKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid ENC_KEY")
	}
	if cfg.EncKey == "" {
		log.Warn().Msg("⚠️ ENC_KEY not set, marketplace tokens are stored unencrypted")
	}
	st := store.New(db.DB, cipher)

	svc := handlers.Services{
		Users:   st,
		Plans:   st,
		Planner: production.NewPlanner(st),
	}

	// 4. Marketplace connector and background sync
	if cfg.Etsy.Enabled() {
		svc.Connector = etsy.NewConnector(etsy.NewClient(cfg.Etsy), st)
		svc.Sync = etsy.NewSyncService(svc.Connector, st, time.Duration(cfg.Etsy.SyncInterval)*time.Minute)
		svc.Sync.Start()
		log.Info().Msg("✅ Etsy: integration enabled")
	} else {
		log.Warn().Msg("⚠️ Etsy: ETSY_API_KEY/ETSY_API_SECRET not set, integration disabled")
	}

	// 5. AI provider
	closeAI := func() {}
	gen, closeGen, err := ai.NewGenerator(context.Background(), cfg.AI)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		log.Warn().Str("provider", cfg.AI.Provider).Msg("⚠️ AI: no API key set, AI endpoints disabled")
	case err != nil:
		log.Error().Err(err).Msg("❌ AI: failed to initialize provider")
	default:
		svc.AI = ai.NewService(gen, cfg.AI)
		closeAI = closeGen
		log.Info().Str("provider", cfg.AI.Provider).Msg("✅ AI: provider ready")
	}

	// 6. Set up HTTP router
	router := handlers.NewRouter(cfg, svc)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("prefix", cfg.Server.PathPrefix).
			Str("version", buildinfo.Version).
			Msg("🚀 Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	sig := <-shutdown
	log.Warn().Str("signal", sig.String()).Msg("⚠️ Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if svc.Sync != nil {
		svc.Sync.Stop()
	}
	closeAI()

	// Close database (this also stops embedded PostgreSQL)
	log.Info().Msg("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Database close error")
	}

	log.Info().Msg("✅ Shutdown complete")
}
