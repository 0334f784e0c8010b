package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search indexed sections",
	Long:  "Searches the titles and content of sections recorded by earlier analyze runs, highest score first.",
	RunE:  runSearch,
}

var (
	searchQuery string
	searchLimit int
	searchDB    string
	searchJSON  bool
)

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Text to search for (required)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchDB, "db", "", "SQLite section index (overrides store.path)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")

	if err := searchCmd.MarkFlagRequired("query"); err != nil {
		panic(fmt.Sprintf("failed to mark query flag as required: %v", err))
	}

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	db, err := rt.openStore(searchDB)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("no section index configured: pass --db or set store.path")
	}
	defer db.Close()

	hits, err := db.SearchSections(ctx, searchQuery, searchLimit)
	if err != nil {
		return fmt.Errorf("failed to search sections: %w", err)
	}

	if searchJSON {
		jsonOutput, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		_, _ = fmt.Fprintln(rt.out, string(jsonOutput))
		return nil
	}

	if len(hits) == 0 {
		_, _ = fmt.Fprintf(rt.out, "No sections match %q\n", searchQuery)
		return nil
	}

	tw := tabwriter.NewWriter(rt.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SCORE\tRANK\tDOCUMENT\tPAGE\tTITLE")
	for _, h := range hits {
		rank := "-"
		if h.Rank > 0 {
			rank = fmt.Sprintf("%d", h.Rank)
		}
		_, _ = fmt.Fprintf(tw, "%.2f\t%s\t%s\t%d\t%s\n", h.Score, rank, h.Document, h.Page, strings.TrimSpace(h.Title))
	}
	return tw.Flush()
}
