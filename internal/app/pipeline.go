package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"schedreport/internal/analysis"
	"schedreport/internal/config"
	"schedreport/internal/errors"
	"schedreport/internal/fetch"
	"schedreport/internal/infrastructure"
	"schedreport/internal/report"
	"schedreport/internal/runlog"
)

// Options control a single pipeline run.
type Options struct {
	// InputPath skips the fetch stage and analyzes an existing export.
	InputPath string
	// OutputPath overrides the default timestamped artifact path.
	OutputPath string
	// KeepDownload leaves the fetched export on disk after a successful run.
	KeepDownload bool
}

// Pipeline runs the report stages strictly in sequence: fetch, load,
// filter, compute, render, cleanup. Each stage runs to completion or to a
// definite failure before the next starts; nothing retries and no partial
// report is ever produced.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	tracer   trace.Tracer
	driver   fetch.Driver
	engine   *analysis.Engine
	renderer report.Renderer

	reportsGenerated metric.Int64Counter
	runsProcessed    metric.Int64Counter
	stageDuration    metric.Float64Histogram
}

// NewPipeline wires a pipeline. driver may be nil when every run will use
// Options.InputPath; renderer defaults to the plain-text renderer.
func NewPipeline(cfg *config.Config, logger *slog.Logger, driver fetch.Driver, renderer report.Renderer) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.NewConfigError("pipeline config is required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if renderer == nil {
		renderer = report.NewTextRenderer()
	}

	engine := analysis.NewEngine(logger, analysis.Config{
		IncludePeakHours: cfg.Report.IncludePeakHours,
		CompletedMarker:  cfg.Report.CompletedMarker,
		FailedMarker:     cfg.Report.FailedMarker,
	})

	p := &Pipeline{
		cfg:      cfg,
		logger:   logger,
		tracer:   otel.Tracer(infrastructure.MeterName),
		driver:   driver,
		engine:   engine,
		renderer: renderer,
	}

	meter := otel.Meter(infrastructure.MeterName)
	var err error
	if p.reportsGenerated, err = meter.Int64Counter("schedreport.reports_generated"); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if p.runsProcessed, err = meter.Int64Counter("schedreport.runs_processed"); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if p.stageDuration, err = meter.Float64Histogram("schedreport.stage_duration_seconds"); err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}

	return p, nil
}

// Run executes one pipeline pass and returns the rendered artifact path.
func (p *Pipeline) Run(ctx context.Context, opts Options) (string, error) {
	runID := infrastructure.NewRunID()
	ctx = infrastructure.WithTraceID(ctx, runID)
	logger := p.logger.With(slog.String("trace_id", runID))

	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("run_id", runID)))
	defer span.End()

	logger.InfoContext(ctx, "pipeline started",
		slog.String("input", opts.InputPath),
		slog.Bool("fetch", opts.InputPath == ""))

	inputPath := opts.InputPath
	fetched := false
	if inputPath == "" {
		if p.driver == nil {
			return "", errors.NewConfigError("no input file and no fetch driver configured", nil)
		}
		var err error
		inputPath, err = p.fetchStage(ctx, logger)
		if err != nil {
			span.SetStatus(codes.Error, "fetch failed")
			return "", err
		}
		fetched = true
	}

	table, err := p.loadStage(ctx, logger, inputPath)
	if err != nil {
		span.SetStatus(codes.Error, "load failed")
		return "", err
	}

	if p.cfg.Report.FilterToToday {
		table = p.filterStage(ctx, logger, table)
	}

	metricsReport, err := p.computeStage(ctx, logger, table)
	if err != nil {
		span.SetStatus(codes.Error, "compute failed")
		return "", err
	}

	outputPath, err := p.renderStage(ctx, logger, metricsReport, opts.OutputPath)
	if err != nil {
		span.SetStatus(codes.Error, "render failed")
		return "", err
	}

	if fetched && !opts.KeepDownload {
		if err := os.Remove(inputPath); err != nil {
			logger.WarnContext(ctx, "failed to clean up downloaded export",
				slog.String("path", inputPath),
				slog.String("error", err.Error()))
		} else {
			logger.InfoContext(ctx, "cleaned up downloaded export",
				slog.String("path", inputPath))
		}
	}

	p.reportsGenerated.Add(ctx, 1)
	span.SetStatus(codes.Ok, "")
	logger.InfoContext(ctx, "pipeline finished",
		slog.String("artifact", outputPath))

	return outputPath, nil
}

func (p *Pipeline) fetchStage(ctx context.Context, logger *slog.Logger) (string, error) {
	var path string
	err := p.stage(ctx, logger, "fetch", func(ctx context.Context) error {
		var err error
		path, err = p.driver.Fetch(ctx)
		return err
	})
	return path, err
}

func (p *Pipeline) loadStage(ctx context.Context, logger *slog.Logger, path string) (*runlog.Table, error) {
	var table *runlog.Table
	err := p.stage(ctx, logger, "load", func(ctx context.Context) error {
		var err error
		table, err = runlog.Load(path)
		if err == nil {
			p.runsProcessed.Add(ctx, int64(table.Len()))
		}
		return err
	})
	return table, err
}

func (p *Pipeline) filterStage(ctx context.Context, logger *slog.Logger, table *runlog.Table) *runlog.Table {
	var filtered *runlog.Table
	// FilterDay cannot fail; the stage wrapper is for timing only.
	_ = p.stage(ctx, logger, "filter", func(ctx context.Context) error {
		filtered = runlog.FilterDay(table, time.Now())
		return nil
	})
	return filtered
}

func (p *Pipeline) computeStage(ctx context.Context, logger *slog.Logger, table *runlog.Table) (*analysis.Report, error) {
	var metricsReport *analysis.Report
	err := p.stage(ctx, logger, "compute", func(ctx context.Context) error {
		var err error
		metricsReport, err = p.engine.Compute(table)
		return err
	})
	return metricsReport, err
}

func (p *Pipeline) renderStage(ctx context.Context, logger *slog.Logger, metricsReport *analysis.Report, outputPath string) (string, error) {
	if outputPath == "" {
		ext := "txt"
		if p.cfg.Report.Format == "csv" {
			ext = "csv"
		}
		outputPath = filepath.Join(p.cfg.Paths.ReportsDir,
			config.ReportFilename(metricsReport.GeneratedAt, ext))
	}

	err := p.stage(ctx, logger, "render", func(ctx context.Context) error {
		doc, err := report.ParseBody(metricsReport.Body)
		if err != nil {
			return err
		}
		if err := p.renderer.Render(ctx, doc, outputPath); err != nil {
			if errors.IsRender(err) {
				return err
			}
			return errors.NewRenderError("renderer failed", err)
		}
		return nil
	})
	return outputPath, err
}

// stage runs one pipeline stage inside a span with duration metrics and
// start/finish logging.
func (p *Pipeline) stage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	logger.InfoContext(ctx, "stage started", slog.String("stage", name))

	err := fn(ctx)
	elapsed := time.Since(start)
	p.stageDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("stage", name)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "stage failed",
			slog.String("stage", name),
			slog.Duration("took", elapsed),
			slog.String("error", err.Error()))
		return err
	}

	logger.InfoContext(ctx, "stage finished",
		slog.String("stage", name),
		slog.Duration("took", elapsed))
	return nil
}
