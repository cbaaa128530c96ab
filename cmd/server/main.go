package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"podcast-search/pkg/api"
	"podcast-search/pkg/config"
	"podcast-search/pkg/setup"
	"podcast-search/pkg/web"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := setup.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to load dependencies")
	}
	defer deps.Close()

	// API
	handler := api.NewHandler(deps.Service, setup.Version, &logger)
	container := restful.NewContainer()
	container.Filter(api.RequestID)
	container.Filter(api.Logger(&logger))
	container.Filter(api.RecoverPanic(&logger))
	container.Filter(api.Timeout(cfg.RequestTimeout))
	api.RegisterRoutes(container, handler)
	api.RegisterOpenAPI(container, setup.Version)

	// Result page
	web.RegisterRoutes(container, web.NewPage(deps.Service, web.Options{VideoHost: cfg.VideoHost}, &logger))

	// CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{api.HeaderRequestID},
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      corsHandler.Handler(container),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	logger.Info().
		Str("address", addr).
		Str("version", setup.Version).
		Str("model", cfg.EmbeddingModel).
		Msg("Starting podcast search API")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
