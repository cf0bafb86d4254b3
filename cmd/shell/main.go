package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/config"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/logging"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/server"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.String("port", "", "Diagnostics/bridge port (overrides config)")
	profile := flag.String("profile", "", "Profile directory (overrides config)")
	dev := flag.Bool("dev", false, "Development mode (debug logs)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *profile != "" {
		cfg.Session.ProfileDir = *profile
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize shell: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("shell exited: " + err.Error())
	}
}
