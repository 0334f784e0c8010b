package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jonathan/outline-ranker/internal/config"
	"github.com/jonathan/outline-ranker/internal/extraction"
	"github.com/jonathan/outline-ranker/internal/observability"
	"github.com/jonathan/outline-ranker/internal/pipeline"
	"github.com/jonathan/outline-ranker/internal/schemas"
	"github.com/jonathan/outline-ranker/internal/store"
)

// newSupplier builds the span supplier used by every command
var newSupplier = func() extraction.Supplier {
	return extraction.NewPDFSupplier()
}

// runtime bundles what a command needs after configuration is loaded
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	printer *observability.Printer
	out     io.Writer
	errOut  io.Writer
	verbose bool
}

func loadRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.LogOptions(), cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		printer: observability.NewPrinter(cmd.OutOrStdout()),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		verbose: verbose || cfg.Verbose,
	}, nil
}

// newPipeline builds a pipeline from the loaded configuration. In verbose mode
// progress events are echoed to stdout.
func (rt *runtime) newPipeline() (*pipeline.Pipeline, error) {
	opts, err := rt.cfg.PipelineOptions(rt.logger)
	if err != nil {
		return nil, err
	}

	if rt.verbose {
		var mu sync.Mutex
		opts.OnProgress = func(e pipeline.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			if e.Document != "" {
				_, _ = fmt.Fprintf(rt.out, "  [%s] %s: %s\n", e.Step, e.Document, e.Message)
				return
			}
			_, _ = fmt.Fprintf(rt.out, "  [%s] %s\n", e.Step, e.Message)
		}
	}
	return pipeline.New(newSupplier(), opts), nil
}

// openStore opens the section index named by the flag, or by the config when
// the flag is empty. Returns nil when neither names one.
func (rt *runtime) openStore(flagPath string) (*store.DB, error) {
	path := flagPath
	if path == "" {
		path = rt.cfg.Store.Path
	}
	if path == "" {
		return nil, nil
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open section index %s: %w", path, err)
	}
	return db, nil
}

// writeJSON writes v as indented JSON to path, then validates it against a bundled schema.
// Validation failures are warnings.
func (rt *runtime) writeJSON(path string, v any, schemaName string) error {
	jsonOutput, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}

	if err := os.WriteFile(path, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}

	if err := schemas.ValidateArtifact(schemaName, jsonOutput); err != nil {
		_, _ = fmt.Fprintf(rt.errOut, "Warning: Output validation failed for %s: %v\n", path, err)
	}
	return nil
}

func (rt *runtime) printBatch(batch pipeline.BatchResult) {
	if rt.verbose {
		rt.printer.PrintBatchSummary(batch)
		return
	}
	_, _ = fmt.Fprintf(rt.out, "Processed: %d, Skipped: %d, Failed: %d\n", batch.Processed, batch.Skipped, batch.Failed)
}
