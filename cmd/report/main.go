package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"schedreport/internal/app"
	"schedreport/internal/config"
	"schedreport/internal/errors"
	"schedreport/internal/fetch"
	"schedreport/internal/infrastructure"
	"schedreport/internal/report"
)

func main() {
	input := flag.String("input", "", "analyze an existing export file instead of fetching from the dashboard")
	out := flag.String("out", "", "output artifact path (defaults to a timestamped file in the reports directory)")
	format := flag.String("format", "", "artifact format: text | csv (overrides config)")
	noFilter := flag.Bool("no-filter", false, "analyze all records instead of today's only")
	noPeakHours := flag.Bool("no-peak-hours", false, "omit the peak-hour analysis section")
	headless := flag.Bool("headless", true, "run the browser headless when fetching")
	keepDownload := flag.Bool("keep-download", false, "keep the downloaded export after a successful run")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		fmt.Printf("Error: Failed to initialize paths: %v\n", err)
		os.Exit(1)
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
	cfg.Paths.DownloadsDir = paths.DownloadsDir
	cfg.Paths.ReportsDir = paths.ReportsDir
	cfg.Logging.FilePath = paths.GetLogPath("report.log")

	if *format != "" {
		cfg.Report.Format = *format
	}
	if *noFilter {
		cfg.Report.FilterToToday = false
	}
	if *noPeakHours {
		cfg.Report.IncludePeakHours = false
	}
	cfg.Dashboard.Headless = *headless

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: Failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}

	providers, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		logger.Warn("Failed to initialize telemetry, continuing without it",
			slog.String("error", err.Error()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var driver fetch.Driver
	if *input == "" {
		if err := cfg.ValidateDashboard(); err != nil {
			logger.Error("Dashboard credentials incomplete; pass -input to analyze a local file",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		driver = fetch.NewQuickSightDriver(cfg.Dashboard, cfg.Paths.DownloadsDir, logger)
	}

	var renderer report.Renderer
	if cfg.Report.Format == "csv" {
		renderer = report.NewCSVRenderer()
	} else {
		renderer = report.NewTextRenderer()
	}

	pipeline, err := app.NewPipeline(cfg, logger, driver, renderer)
	if err != nil {
		logger.Error("Failed to build pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}

	artifact, err := pipeline.Run(ctx, app.Options{
		InputPath:    *input,
		OutputPath:   *out,
		KeepDownload: *keepDownload,
	})
	if err != nil {
		logger.Error("Report generation failed", slog.String("error", err.Error()))
		if errors.IsEmptyData(err) {
			fmt.Println("No run records to analyze; no report produced.")
		}
		shutdown(ctx, providers)
		os.Exit(1)
	}

	logger.Info("Report generated", slog.String("artifact", artifact))
	fmt.Printf("Report generated at %s\n", artifact)

	shutdown(ctx, providers)
}

func shutdown(ctx context.Context, providers *infrastructure.OTelProviders) {
	if providers != nil {
		if err := providers.Shutdown(ctx); err != nil {
			slog.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
	infrastructure.CloseLogFile()
}
