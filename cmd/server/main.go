// Package main is the entry point for the Filmorate server.
//
// The main package is kept minimal. Its job is to:
// 1. Read configuration (config.yaml, .env, environment)
// 2. Create the logger
// 3. Start the server
//
// All actual logic lives in imported packages (internal/server,
// internal/service, internal/repository, ...).
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/sakif/filmorate/internal/config"
	"github.com/sakif/filmorate/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: config.yaml if present)")
	flag.Parse()

	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Log levels (from least to most severe): Debug → Info → Warn → Error.
	// The level comes from logLevel / LOG_LEVEL. SetDefault makes package
	// level slog calls (used by the JSON helpers) go through the same handler.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	// === 3. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
