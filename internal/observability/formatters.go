// Package observability provides logging setup and formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/outline-ranker/internal/pipeline"
	"github.com/jonathan/outline-ranker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintOutline outputs the title and the first headings of a document outline.
func (p *Printer) PrintOutline(document string, outline *types.Outline) {
	if outline == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Document: %s\n", document))
	title := outline.Title
	if title == "" {
		title = "(none)"
	}
	sb.WriteString(fmt.Sprintf("Title:    %s\n", title))
	sb.WriteString(fmt.Sprintf("Headings: %d\n", len(outline.Outline)))

	if len(outline.Outline) > 0 {
		sb.WriteString("\n")
		count := min(len(outline.Outline), maxItemsToShow)
		for i := 0; i < count; i++ {
			e := outline.Outline[i]
			indent := strings.Repeat("  ", max(e.Level.Depth()-1, 0))
			sb.WriteString(fmt.Sprintf("%s%s %s (p.%d)\n", indent, e.Level, e.Text, e.Page))
		}
		if len(outline.Outline) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more headings\n", len(outline.Outline)-maxItemsToShow))
		}
	}

	p.printBox("DOCUMENT OUTLINE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPersonaProfile outputs the resolved persona family and keyword sets.
func (p *Printer) PrintPersonaProfile(profile *types.PersonaProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	family := profile.Family
	if family == "" {
		family = "(generic)"
	}
	sb.WriteString(fmt.Sprintf("Role:   %s\n", profile.Role))
	sb.WriteString(fmt.Sprintf("Task:   %s\n", profile.Task))
	sb.WriteString(fmt.Sprintf("Family: %s\n", family))
	sb.WriteString("\n")

	if len(profile.High) > 0 {
		sb.WriteString(fmt.Sprintf("High keywords (%d):\n", len(profile.High)))
		sb.WriteString(fmt.Sprintf("  %s\n", strings.Join(profile.High[:min(len(profile.High), 8)], ", ")))
	}
	if len(profile.Medium) > 0 {
		sb.WriteString(fmt.Sprintf("Task keywords (%d):\n", len(profile.Medium)))
		sb.WriteString(fmt.Sprintf("  %s\n", strings.Join(profile.Medium[:min(len(profile.Medium), 8)], ", ")))
	}

	p.printBox("PERSONA PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRankedSections outputs the top selected sections with scores.
func (p *Printer) PrintRankedSections(selected []types.ScoredSection) {
	if len(selected) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Selected sections: %d\n\n", len(selected)))

	count := min(len(selected), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := selected[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", s.Rank, s.Title))
		sb.WriteString(fmt.Sprintf("    %s p.%d  Score: %.2f\n", s.DocumentID, s.StartPage, s.Score))
		if s.Notes != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", s.Notes))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(selected) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more sections", len(selected)-maxItemsToShow))
	}

	p.printBox("TOP RANKED SECTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSubsections outputs the refined excerpts.
func (p *Printer) PrintSubsections(subs []types.Subsection) {
	if len(subs) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Refined excerpts: %d\n\n", len(subs)))

	count := min(len(subs), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := subs[i]
		sb.WriteString(fmt.Sprintf("• %s\n", truncate(s.RefinedText, 50)))
		sb.WriteString(fmt.Sprintf("  [%s p.%d]\n", s.DocumentID, s.Page))
	}

	if len(subs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more excerpts", len(subs)-maxItemsToShow))
	}

	p.printBox("REFINED SUBSECTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchSummary outputs processed, skipped, and failed document counts.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintBatchSummary(batch pipeline.BatchResult) {
	if !batch.HasFailures() && batch.Skipped == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fmt.Sprintf("✅ ALL %d DOCUMENTS PROCESSED", batch.Processed))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Processed: %d\n", batch.Processed))
	sb.WriteString(fmt.Sprintf("Skipped:   %d\n", batch.Skipped))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", batch.Failed))

	if len(batch.Failures) > 0 {
		sb.WriteString("\n")
		for _, f := range batch.Failures {
			sb.WriteString(fmt.Sprintf("⚠ %s\n", f.Document))
			sb.WriteString(fmt.Sprintf("  %s\n", f.Reason))
		}
	}

	p.printBox("BATCH SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
