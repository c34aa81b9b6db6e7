package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/vibabattista/stylised-images/core"
	"github.com/vibabattista/stylised-images/core/validation"
	"github.com/vibabattista/stylised-images/imgio"
	"github.com/vibabattista/stylised-images/metrics"
	"github.com/vibabattista/stylised-images/pipeline"
	"github.com/vibabattista/stylised-images/restyle"
	"github.com/vibabattista/stylised-images/shutdown"
)

// run executes one full sweep session and returns the process exit code.
// It validates the configuration, builds the pipeline, loads the seed
// image, runs every sweep and saves the outputs.
func run(config *core.Config, logger *zap.Logger) int {
	runtime := pipeline.RuntimeConfigFromEnv()

	if code := runStartupValidation(config, runtime, logger); code != core.ExitCodeSuccess {
		return code
	}

	backend, err := newPipeline(config.Backend, runtime)
	if err != nil {
		logger.Error("Failed to initialize pipeline", zap.Error(err))
		return core.ExitCodeError
	}
	if closer, ok := backend.(io.Closer); ok {
		defer closer.Close()
	}

	watcher := shutdown.NewWatcher(logger)
	ctx := watcher.Start(context.Background())
	defer watcher.Stop()

	loader := imgio.NewLoader(imgio.DefaultLoaderConfig())
	seed, err := loader.LoadSource(ctx, config.SeedSource)
	if err != nil {
		logger.Error("Failed to load seed image",
			zap.String("source", config.SeedSource),
			zap.Error(err))
		return core.ExitCodeError
	}
	logger.Info("Seed image loaded",
		zap.String("source", config.SeedSource),
		zap.Int("width", seed.Bounds().Dx()),
		zap.Int("height", seed.Bounds().Dy()))

	requests, err := buildRequests(config, seed)
	if err != nil {
		logger.Error("Failed to build sweep requests", zap.Error(err))
		return core.ExitCodeError
	}
	logger.Info("Sweep batch ready",
		zap.Int("sweeps", len(requests)),
		zap.String("backend", backend.Name()))

	driver := restyle.NewDriver(restyle.DriverConfig{
		InputSize:       runtime.InputSize,
		SheetGap:        config.SheetGap,
		ContinueOnError: config.ContinueOnError,
	}, backend, logger).WithReporter(newConsoleReporter())

	stats := metrics.NewSweepStats(metrics.DefaultStatsConfig(), time.Now())
	runStart := time.Now()

	results, runErr := driver.RunAll(ctx, requests)
	recordOutcomes(stats, requests, results, runErr, config.ContinueOnError, runStart)

	saved := 0
	for _, result := range results {
		if err := saveSweep(config.OutputDir, result, logger); err != nil {
			logger.Error("Failed to save sweep outputs",
				zap.String("sweep_id", result.ID),
				zap.String("style", result.Style),
				zap.Error(err))
			return core.ExitCodeError
		}
		saved++
	}

	logSummary(stats, logger, saved)

	if watcher.Interrupted() {
		logger.Warn("Run interrupted", zap.String("signal", watcher.Signal().String()))
		return watcher.ExitCode()
	}
	if runErr != nil {
		logger.Error("Sweep batch failed", zap.Error(runErr))
		return core.ExitCodeError
	}
	logger.Info("Goodbye!")
	return core.ExitCodeSuccess
}

// runStartupValidation performs comprehensive startup validation.
//
// Returns the appropriate exit code:
//   - ExitCodeSuccess (0) if all validations pass
//   - ExitCodeError (1) if any validation fails
func runStartupValidation(config *core.Config, runtime pipeline.RuntimeConfig, logger *zap.Logger) int {
	logger.Info("Starting startup validation...")

	suite := validation.NewValidationSuite(validation.Target{
		Backend:    config.Backend,
		BaseURL:    runtime.BaseURL,
		APIKey:     runtime.APIKey,
		SeedSource: config.SeedSource,
		PlanPath:   config.PlanPath,
		OutputDir:  config.OutputDir,
	}).WithShowProgress(true)

	result := suite.Validate()

	if !result.Success {
		logger.Error("Configuration validation failed",
			zap.Int("passed", result.PassedSteps),
			zap.Int("failed", result.FailedSteps),
			zap.Duration("duration", result.Duration),
		)

		// Log individual failures for debugging
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error),
				)
			}
		}

		return core.ExitCodeError
	}

	logger.Info("Startup validation passed",
		zap.Int("steps", result.TotalSteps),
		zap.Int("warnings", result.Warnings),
		zap.Duration("duration", result.Duration),
	)
	return core.ExitCodeSuccess
}

// newPipeline builds the generation pipeline for the configured backend.
func newPipeline(backend string, runtime pipeline.RuntimeConfig) (pipeline.Pipeline, error) {
	switch backend {
	case core.BackendWebUI:
		return pipeline.NewWebUIPipeline(runtime)
	case core.BackendOpenAI:
		return pipeline.NewOpenAIPipeline(runtime)
	case core.BackendNull:
		return &pipeline.NullPipeline{}, nil
	default:
		return nil, core.ErrInvalidBackend(backend)
	}
}

// buildRequests turns the configuration into the sweep batch: either the
// sweeps of a YAML plan, or one sweep per configured style preset. Plan
// sweeps keep the tuning the plan specifies; preset sweeps take image
// count, output size and sheet settings from the configuration.
func buildRequests(config *core.Config, seed image.Image) ([]restyle.SweepRequest, error) {
	if config.PlanPath != "" {
		plan, err := restyle.LoadPlan(config.PlanPath)
		if err != nil {
			return nil, err
		}
		return plan.Requests(seed)
	}

	requests := make([]restyle.SweepRequest, 0, len(config.Styles))
	for _, style := range config.Styles {
		preset, err := restyle.Preset(style)
		if err != nil {
			return nil, err
		}
		request := preset.Request(seed)
		request.Config.ImageCount = config.ImageCount
		request.Config.OutputSize = config.OutputSize
		request.Config.Sheet = config.Sheet
		requests = append(requests, request)
	}
	return requests, nil
}

// saveSweep writes the normalized images of one sweep, plus its contact
// sheet when present, into the output directory.
func saveSweep(outputDir string, result *restyle.SweepResult, logger *zap.Logger) error {
	base := fmt.Sprintf("%s_%s", result.Style, result.ID)
	paths, err := imgio.SaveAll(outputDir, base, result.Normalized)
	if err != nil {
		return err
	}
	if result.Sheet != nil {
		sheetPath := filepath.Join(outputDir, base+"_sheet.png")
		if err := imgio.Save(result.Sheet, sheetPath); err != nil {
			return err
		}
		paths = append(paths, sheetPath)
	}
	logger.Info("Sweep outputs saved",
		zap.String("sweep_id", result.ID),
		zap.String("style", result.Style),
		zap.Int64("seed", result.Seed),
		zap.Duration("elapsed", result.Elapsed),
		zap.Strings("files", paths))
	return nil
}

// recordOutcomes feeds the batch outcome into the session statistics.
// Sequential sweeps let per-sweep start times be reconstructed by walking
// a cursor forward from the batch start.
func recordOutcomes(stats *metrics.SweepStats, requests []restyle.SweepRequest, results []*restyle.SweepResult, runErr error, continueOnError bool, runStart time.Time) {
	cursor := runStart
	for _, result := range results {
		stats.RecordSweep(metrics.SweepRecord{
			ID:            result.ID,
			Style:         result.Style,
			Backend:       result.Backend,
			Status:        metrics.SweepStatusSuccess,
			Images:        len(result.Normalized),
			Strength:      result.Config.Strength,
			GuidanceScale: result.Config.GuidanceScale,
			StartTime:     cursor,
			Duration:      result.Elapsed,
		})
		cursor = cursor.Add(result.Elapsed)
	}

	// Cancellation is an interrupt, not a sweep failure.
	if runErr == nil || errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		return
	}

	for _, request := range failedRequests(requests, results, continueOnError) {
		stats.RecordSweep(metrics.SweepRecord{
			Style:         request.Style,
			Status:        metrics.SweepStatusError,
			Strength:      request.Config.Strength,
			GuidanceScale: request.Config.GuidanceScale,
			StartTime:     cursor,
			ErrorMsg:      runErr.Error(),
		})
	}
}

// failedRequests returns the requests that produced no result. When the
// batch aborts on the first failure the results form a prefix of the
// requests, so exactly the next request failed. With ContinueOnError
// gaps can sit anywhere, so failures are recovered by diffing per-style
// counts between requests and results.
func failedRequests(requests []restyle.SweepRequest, results []*restyle.SweepResult, continueOnError bool) []restyle.SweepRequest {
	if len(results) >= len(requests) {
		return nil
	}
	if !continueOnError {
		return requests[len(results) : len(results)+1]
	}

	produced := make(map[string]int, len(results))
	for _, result := range results {
		produced[result.Style]++
	}
	var failed []restyle.SweepRequest
	for _, request := range requests {
		if produced[request.Style] > 0 {
			produced[request.Style]--
			continue
		}
		failed = append(failed, request)
	}
	return failed
}

// logSummary writes the end-of-run statistics to the log.
func logSummary(stats *metrics.SweepStats, logger *zap.Logger, saved int) {
	snapshot := stats.Snapshot()
	logger.Info("Run complete",
		zap.Int64("sweeps", snapshot.TotalSweeps),
		zap.Int64("succeeded", snapshot.TotalSuccess),
		zap.Int64("failed", snapshot.TotalErrors),
		zap.Int64("images", snapshot.TotalImages),
		zap.Int("saved_sweeps", saved),
		zap.Duration("elapsed", stats.Elapsed()),
	)
	for style, styleMetrics := range snapshot.ByStyle {
		logger.Info("Style summary",
			zap.String("style", style),
			zap.Int64("sweeps", styleMetrics.Count),
			zap.Float64("success_rate", styleMetrics.SuccessRate),
			zap.Duration("avg_duration", styleMetrics.AvgDuration),
			zap.Int64("images", styleMetrics.Images),
		)
	}
}
