package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/outline-ranker/internal/pipeline"
	"github.com/jonathan/outline-ranker/internal/report"
	"github.com/jonathan/outline-ranker/internal/store"
	"github.com/jonathan/outline-ranker/internal/types"
	bundled "github.com/jonathan/outline-ranker/schemas"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank the sections of document collections for a persona",
	Long: `Reads a collection input file (or every collection input under a directory), segments its PDFs
into sections, scores them for the persona and task, and writes the ranked sections and refined
subsections to <collection>_output.json next to each input.`,
	RunE: runAnalyze,
}

var (
	analyzeInput   string
	analyzeOutput  string
	analyzePersona string
	analyzeTask    string
	analyzeXLSX    bool
	analyzeHTML    bool
	analyzeDB      string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "in", "i", "", "Collection input JSON file or directory of collections (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Output JSON path (single collection only)")
	analyzeCmd.Flags().StringVar(&analyzePersona, "persona", "", "Override the persona role from the input file")
	analyzeCmd.Flags().StringVar(&analyzeTask, "task", "", "Override the job to be done from the input file")
	analyzeCmd.Flags().BoolVar(&analyzeXLSX, "xlsx", false, "Also write an .xlsx report next to each output")
	analyzeCmd.Flags().BoolVar(&analyzeHTML, "html", false, "Also write an .html digest next to each output")
	analyzeCmd.Flags().StringVar(&analyzeDB, "db", "", "SQLite section index to record ranked sections in (overrides store.path)")

	if err := analyzeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	inputs, err := pipeline.DiscoverCollections(analyzeInput, rt.cfg.Analyze.InputName)
	if err != nil {
		return fmt.Errorf("failed to find collections: %w", err)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no %s found in %s", rt.cfg.Analyze.InputName, analyzeInput)
	}
	if analyzeOutput != "" && len(inputs) > 1 {
		return fmt.Errorf("--out requires a single collection, found %d", len(inputs))
	}

	p, err := rt.newPipeline()
	if err != nil {
		return err
	}

	db, err := rt.openStore(analyzeDB)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	var total pipeline.BatchResult
	var lastErr error
	failedCollections := 0
	for i, inputPath := range inputs {
		_, _ = fmt.Fprintf(rt.out, "Collection %d/%d: %s\n", i+1, len(inputs), inputPath)

		batch, err := analyzeOne(ctx, rt, p, db, inputPath)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			rt.logger.Warn("collection failed", "input", inputPath, "error", err)
			_, _ = fmt.Fprintf(rt.out, "Collection failed: %v\n", err)
			total.Failed++
			total.Failures = append(total.Failures, pipeline.Failure{Document: inputPath, Reason: err.Error()})
			failedCollections++
			lastErr = err
			continue
		}
		total.Processed += batch.Processed
		total.Skipped += batch.Skipped
		total.Failed += batch.Failed
		total.Failures = append(total.Failures, batch.Failures...)
	}

	rt.printBatch(total)
	if failedCollections == len(inputs) {
		return lastErr
	}
	return nil
}

func analyzeOne(ctx context.Context, rt *runtime, p *pipeline.Pipeline, db *store.DB, inputPath string) (pipeline.BatchResult, error) {
	input, err := pipeline.LoadCollectionInput(inputPath, rt.cfg.Analyze.PDFDir)
	if err != nil {
		return pipeline.BatchResult{}, err
	}
	if analyzePersona != "" {
		input.Persona.Role = analyzePersona
	}
	if analyzeTask != "" {
		input.JobToBeDone.Task = analyzeTask
	}

	_, _ = fmt.Fprintf(rt.out, "Step 1/3: Analyzing %d documents...\n", len(input.Documents))
	result, err := p.AnalyzeCollection(ctx, input)
	if err != nil {
		return pipeline.BatchResult{}, fmt.Errorf("failed to analyze %s: %w", inputPath, err)
	}

	if rt.verbose {
		rt.printer.PrintPersonaProfile(result.Profile)
		rt.printer.PrintRankedSections(result.Selected)
		rt.printer.PrintSubsections(result.Subsections)
	}

	outPath := analyzeOutput
	if outPath == "" {
		outPath = pipeline.OutputPath(inputPath)
	}
	_, _ = fmt.Fprintln(rt.out, "Step 2/3: Writing output...")
	if err := rt.writeJSON(outPath, result.Output, bundled.CollectionOutput); err != nil {
		return pipeline.BatchResult{}, err
	}

	stem := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	if analyzeXLSX {
		if err := report.WriteXLSX(stem+".xlsx", result.Output); err != nil {
			return pipeline.BatchResult{}, fmt.Errorf("failed to write report: %w", err)
		}
		_, _ = fmt.Fprintf(rt.out, "Wrote report to %s\n", stem+".xlsx")
	}
	if analyzeHTML {
		if err := report.WriteHTML(stem+".html", result.Output); err != nil {
			return pipeline.BatchResult{}, fmt.Errorf("failed to write digest: %w", err)
		}
		_, _ = fmt.Fprintf(rt.out, "Wrote digest to %s\n", stem+".html")
	}

	_, _ = fmt.Fprintln(rt.out, "Step 3/3: Indexing sections...")
	if db != nil {
		if err := recordAnalysis(ctx, db, input, result); err != nil {
			rt.logger.Warn("failed to record analysis run", "error", err)
		}
	}

	_, _ = fmt.Fprintf(rt.out, "Successfully ranked %d sections and %d subsections to %s\n",
		len(result.Output.ExtractedSections), len(result.Output.SubsectionAnalysis), outPath)
	return result.Batch, nil
}

func recordAnalysis(ctx context.Context, db *store.DB, input *types.CollectionInput, result *pipeline.CollectionResult) error {
	runID, err := db.CreateRun(ctx, store.KindAnalyze, input.Persona.Role, input.JobToBeDone.Task)
	if err != nil {
		return err
	}
	if err := db.SaveSections(ctx, runID, result.RankedSections()); err != nil {
		_ = db.CompleteRun(ctx, runID, store.StatusFailed)
		return err
	}
	return db.CompleteRun(ctx, runID, store.StatusCompleted)
}
