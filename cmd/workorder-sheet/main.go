package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/a3tai/workorder-sheet/internal/config"
	"github.com/a3tai/workorder-sheet/internal/logger"
	"github.com/a3tai/workorder-sheet/internal/mcp"
	"github.com/a3tai/workorder-sheet/internal/pdf"
	"github.com/a3tai/workorder-sheet/internal/pipeline"
	"github.com/a3tai/workorder-sheet/internal/variant"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// Exit codes
const (
	exitOK       = 0
	exitError    = 1
	exitNoRecord = 2
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitError
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	log, err := logger.New(cfg.LogLevel, cfg.IsStdioMode())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return exitError
	}
	defer logger.Close(log)

	if cfg.IsDebug() {
		log.Debug("starting", zap.Stringer("config", cfg))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, log, os.Stdout)
}

// run executes one process lifetime and returns its exit code
func run(ctx context.Context, cfg *config.Config, log *zap.Logger, stdout io.Writer) int {
	registry := variant.NewRegistry()
	if cfg.VariantsFile != "" {
		if err := registry.LoadFile(cfg.VariantsFile); err != nil {
			log.Error("failed to load variants", zap.String("file", cfg.VariantsFile), zap.Error(err))
			return exitError
		}
	}

	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.Directory, cfg.ValidatePDFs)
	if err != nil {
		log.Error("failed to create PDF service", zap.Error(err))
		return exitError
	}

	if cfg.IsStdioMode() {
		return runStdioMode(ctx, cfg, pdfService, registry, log)
	}
	return runExtract(ctx, cfg, pdfService, registry, log, stdout)
}

// runStdioMode serves MCP until the client closes stdin or a signal arrives
func runStdioMode(ctx context.Context, cfg *config.Config, pdfService *pdf.Service, registry *variant.Registry,
	log *zap.Logger,
) int {
	server, err := mcp.NewServer(cfg, pdfService, registry, log)
	if err != nil {
		log.Error("failed to create MCP server", zap.Error(err))
		return exitError
	}

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server error", zap.Error(err))
		return exitError
	}
	log.Info("server stopped")
	return exitOK
}

// runExtract performs a one-shot extraction of the command line inputs
func runExtract(ctx context.Context, cfg *config.Config, pdfService *pdf.Service, registry *variant.Registry,
	log *zap.Logger, stdout io.Writer,
) int {
	v, err := registry.Get(cfg.Variant)
	if err != nil {
		log.Error("invalid variant", zap.Error(err))
		return exitError
	}

	inputs, err := pdfService.ResolveInputs(cfg.Inputs)
	if err != nil {
		log.Error("invalid inputs", zap.Error(err))
		return exitError
	}
	if len(inputs) == 0 {
		fmt.Fprintf(stdout, "No PDF reports found in %s\n", cfg.Directory)
		return exitNoRecord
	}

	seed := cfg.ColorSeed
	result, err := pipeline.NewService(pdfService, log).Run(ctx, inputs, pipeline.Options{
		Variant:      v,
		UnknownDates: cfg.UnknownDatePolicy(),
		ColorSeed:    &seed,
	})
	if errors.Is(err, pipeline.ErrNoRecords) {
		fmt.Fprintf(stdout, "No valid data found in %d page(s) of %d document(s) using variant %s\n",
			result.Pages, result.Documents, v.Name)
		return exitNoRecord
	}
	if err != nil {
		log.Error("extraction failed", zap.Error(err))
		return exitError
	}

	output := cfg.Output
	if output == "" {
		output = pipeline.DefaultOutputName(result.RunID)
	}
	outPath, err := pdfService.ResolveOutput(output)
	if err != nil {
		log.Error("invalid output", zap.Error(err))
		return exitError
	}
	if err := pipeline.SaveSheet(outPath, result.Sheet); err != nil {
		log.Error("failed to save sheet", zap.Error(err))
		return exitError
	}

	fmt.Fprintf(stdout, "Extracted %d work order(s) from %d page(s) to %s\n", result.Rows, result.Pages, outPath)
	if skipped := len(result.Problems.All()); skipped > 0 {
		fmt.Fprintf(stdout, "Skipped %d page(s) without readable text\n", skipped)
	}
	return exitOK
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Work Order Sheet\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
