package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/devtrace/devtrace/internal/auth"
	"github.com/devtrace/devtrace/internal/cache"
	"github.com/devtrace/devtrace/internal/config"
	"github.com/devtrace/devtrace/internal/db"
	"github.com/devtrace/devtrace/internal/geo"
	"github.com/devtrace/devtrace/internal/handlers"
	"github.com/devtrace/devtrace/internal/live"
	"github.com/devtrace/devtrace/internal/tracker"
	"github.com/devtrace/devtrace/internal/verify"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer database.Close()

	geoReader, err := geo.Open(cfg.GeoIPPath)
	if err != nil {
		log.Warn().Err(err).Msg("geo lookups disabled")
		geoReader, _ = geo.Open("")
	}
	defer geoReader.Close()

	projectCache, err := cache.New(cfg.CacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("cache")
	}

	hub := live.NewHub()
	verifier := auth.NewVerifier(cfg.JWTSecret)
	recorder := tracker.NewRecorder(database, geoReader, projectCache, hub)
	verifyService := verify.NewService(database, cfg.VerifyTimeout)

	router := handlers.Router(handlers.Deps{
		DB:       database,
		Cfg:      cfg,
		Auth:     verifier,
		Hub:      hub,
		Recorder: recorder,
		Cache:    projectCache,
		Verify:   verifyService,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("devtrace listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-stop
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	hub.Close()
	log.Info().Msg("goodbye")
}
