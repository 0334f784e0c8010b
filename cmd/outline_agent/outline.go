package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/outline-ranker/internal/pipeline"
	"github.com/jonathan/outline-ranker/internal/store"
	bundled "github.com/jonathan/outline-ranker/schemas"
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Extract the title and heading outline of PDFs",
	Long:  "Extracts a title and an H1-H4 outline from a PDF, or from every PDF under a directory, writing one <name>.json per document.",
	RunE:  runOutline,
}

var (
	outlineInput  string
	outlineOutput string
	outlineDB     string
)

func init() {
	outlineCmd.Flags().StringVarP(&outlineInput, "in", "i", "", "PDF file or directory of PDFs (required)")
	outlineCmd.Flags().StringVarP(&outlineOutput, "out", "o", "", "Directory for outline JSON files (required)")
	outlineCmd.Flags().StringVar(&outlineDB, "db", "", "SQLite section index to record the run in (overrides store.path)")

	if err := outlineCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := outlineCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	paths, err := pipeline.DiscoverPDFs(outlineInput)
	if err != nil {
		return fmt.Errorf("failed to find PDFs: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found in %s", outlineInput)
	}

	p, err := rt.newPipeline()
	if err != nil {
		return err
	}

	db, err := rt.openStore(outlineDB)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	_, _ = fmt.Fprintf(rt.out, "Step 1/2: Extracting outlines from %d PDFs...\n", len(paths))
	results, batch := p.OutlineBatch(ctx, paths)

	_, _ = fmt.Fprintln(rt.out, "Step 2/2: Writing outlines...")
	written := 0
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		path := pipeline.OutlinePath(outlineOutput, r.Path)
		if err := rt.writeJSON(path, r.Outline, bundled.Outline); err != nil {
			return err
		}
		written++
		if rt.verbose {
			rt.printer.PrintOutline(r.Path, r.Outline)
		}
	}

	if db != nil {
		if err := recordOutlines(ctx, db, results); err != nil {
			rt.logger.Warn("failed to record outline run", "error", err)
		}
	}

	rt.printBatch(batch)
	_, _ = fmt.Fprintf(rt.out, "Successfully wrote %d outlines to %s\n", written, outlineOutput)
	return nil
}

func recordOutlines(ctx context.Context, db *store.DB, results []pipeline.OutlineResult) error {
	runID, err := db.CreateRun(ctx, store.KindOutline, "", "")
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if err := db.SaveOutline(ctx, runID, r.Path, r.Outline); err != nil {
			_ = db.CompleteRun(ctx, runID, store.StatusFailed)
			return err
		}
	}
	return db.CompleteRun(ctx, runID, store.StatusCompleted)
}
