package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outline-ranker/internal/extraction"
	"github.com/jonathan/outline-ranker/internal/types"
)

// resetFlags restores every flag to its default so commands can run repeatedly in one process
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the CLI in-process with the given supplier
func execute(t *testing.T, supplier extraction.Supplier, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	original := newSupplier
	newSupplier = func() extraction.Supplier { return supplier }
	t.Cleanup(func() { newSupplier = original })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func line(page int, text string, size, y, width float64) types.Line {
	return types.Line{Page: page, Spans: []types.Span{{
		Text: text, FontSize: size, Page: page,
		BBox: types.BBox{X0: 72, Y0: y, X1: 72 + width, Y1: y + size},
	}}}
}

func travelGuide() *types.Document {
	return &types.Document{ID: "guide.pdf", Pages: []types.Page{
		{Number: 1, Width: 612, Height: 792, Lines: []types.Line{
			line(1, "Coastal Adventures Guide", 24, 100, 300),
			line(1, "1 Nightlife and Entertainment", 16, 150, 250),
			line(1, "The bars near the old port stay open late and groups of friends can move between rooftop terraces.", 11, 180, 450),
			line(1, "Book tables ahead on weekends since the popular clubs fill up quickly after eleven at night.", 11, 200, 450),
			line(1, "Bring cash for the smaller venues.", 11, 220, 300),
		}},
		{Number: 2, Width: 612, Height: 792, Lines: []types.Line{
			line(2, "2 Registration Forms", 16, 100, 250),
			line(2, "Fill in the form.", 11, 130, 300),
			line(2, "Sign at the bottom.", 11, 150, 300),
		}},
	}}
}

// writeFile creates path with content, making parent directories
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// newCollection lays out a collection directory and returns its input path and a supplier serving its PDFs
func newCollection(t *testing.T, root, name string) (string, extraction.StaticSupplier) {
	t.Helper()
	dir := filepath.Join(root, name)
	inputPath := filepath.Join(dir, "collection_input.json")
	writeFile(t, inputPath, `{
		"challenge_info": {"challenge_id": "round_1b_002"},
		"documents": [{"filename": "guide.pdf"}, {"filename": "missing.pdf"}],
		"persona": {"role": "Travel Planner"},
		"job_to_be_done": {"task": "Plan a trip of 4 days for a group of 10 college friends."}
	}`)
	return inputPath, extraction.StaticSupplier{
		filepath.Join(dir, "PDFs", "guide.pdf"): travelGuide(),
	}
}
