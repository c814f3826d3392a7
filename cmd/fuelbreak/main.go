package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fuelbreak/internal/config"
	apperrors "fuelbreak/internal/errors"
	"fuelbreak/internal/infrastructure"
	"fuelbreak/internal/operations"
	"fuelbreak/internal/render"
	"fuelbreak/pkg/contracts"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("fuelbreak failed", slog.String("error", err.Error()))
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
	infrastructure.CloseLogFile()
}

// run loads the configuration, applies the command-line overrides and
// executes one analysis.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	configFile := fs.String("config", "", "YAML configuration file (defaults to config.yaml or configs/config.yaml when present)")
	inputFile := fs.String("input", "", "input spreadsheet (.xlsx or .csv), overrides input.file")
	outDir := fs.String("out", "", "output directory, overrides output.dir")
	showVersion := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(os.Stdout, contracts.GetVersionInfo())
		return nil
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return apperrors.NewConfigError("failed to load configuration", err)
	}
	if *inputFile != "" {
		cfg.Input.File = *inputFile
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if err := cfg.Validate(); err != nil {
		return apperrors.NewConfigError("invalid configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return apperrors.NewConfigError("failed to initialize logger", err)
	}

	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return apperrors.NewConfigError("failed to initialize telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreateAnalysisMetrics(providers.Meter)
	if err != nil {
		return err
	}

	paths, err := config.NewPaths(cfg)
	if err != nil {
		return apperrors.NewConfigError("failed to resolve output paths", err)
	}
	style, err := render.NewStyle(cfg.Render)
	if err != nil {
		return err
	}
	cutoff, err := cfg.CutoffTime()
	if err != nil {
		return apperrors.NewConfigError("invalid cutoff", err)
	}

	logger.InfoContext(ctx, "Starting fuel price analysis",
		slog.String("input", paths.InputFile),
		slog.String("output_dir", paths.OutputDir),
		slog.String("cutoff", cfg.Analysis.Cutoff),
		slog.String("format", style.Format))

	registry, err := operations.NewAnalysisRegistry(logger)
	if err != nil {
		return err
	}
	manager := operations.NewManager(registry, operations.NewOperationTracer(providers, metrics), logger)

	state := operations.NewRunState(runID, cfg, paths)
	state.Style = style
	state.Cutoff = cutoff
	state.Logger = logger
	state.Metrics = metrics

	if err := manager.Execute(ctx, state); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Analysis complete",
		slog.Int("rows", state.Table.Len()),
		slog.Int("artifacts", len(state.Manifest.Artifacts)),
		slog.String("manifest", paths.ManifestFile),
		slog.Duration("duration", state.Duration()))
	return nil
}
