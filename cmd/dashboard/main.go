package main

import (
	"context"
	"flag"
	"os"

	"github.com/franckalain/fittrack/internal/app"
	"github.com/franckalain/fittrack/internal/config"
	"github.com/franckalain/fittrack/internal/logging"
	"github.com/franckalain/fittrack/internal/server"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", config.GetConfigPath(), "path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := logging.Configure(cfg.Log.Level, cfg.Log.Pretty)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to start")
	}
	defer a.Close()

	if err := a.Tracker.Start(ctx); err != nil {
		logger.Warn().Err(err).Msg("today could not be loaded, starting empty")
	}

	// Initialize and start server
	srv := server.New(a.Tracker, logging.Component(logger, "server"),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		server.WithTimeout(cfg.Timeout()),
		server.WithDebug(cfg.Server.Debug),
		server.WithMetrics(a.Registry),
	)
	if err := srv.Start(cfg.Server.Port, cfg.Server.StaticDir); err != nil {
		logger.Error().Stack().Err(err).Msg("Failed to start server")
		a.Close()
		os.Exit(1)
	}
}
