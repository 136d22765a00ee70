package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"schedreport/internal/config"
	"schedreport/internal/fetch"
	"schedreport/internal/infrastructure"
)

// fetcher downloads the scheduler run-log export without analyzing it.
// Useful for checking credentials and selectors after a dashboard change.
func main() {
	outDir := flag.String("out", "", "directory to save the export (defaults to data/downloads)")
	headless := flag.Bool("headless", true, "run browser headless")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		fmt.Printf("Error: Failed to initialize paths: %v\n", err)
		os.Exit(1)
	}
	if *outDir == "" {
		*outDir = paths.DownloadsDir
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Printf("Error: Failed to create required directories: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Warning: Failed to load config, using defaults: %v\n", err)
		cfg = config.Default()
	}
	cfg.Dashboard.Headless = *headless
	cfg.Logging.FilePath = paths.GetLogPath("fetcher.log")

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}

	if err := cfg.ValidateDashboard(); err != nil {
		logger.Error("Dashboard credentials incomplete", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := fetch.NewQuickSightDriver(cfg.Dashboard, *outDir, logger)
	path, err := driver.Fetch(ctx)
	if err != nil {
		logger.Error("Export download failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Export downloaded", slog.String("path", path))
	fmt.Printf("Export downloaded to %s\n", path)
	infrastructure.CloseLogFile()
}
