package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jonathan/outline-ranker/internal/types"
)

// Markdown renders output as a readable digest: the request, a table of ranked
// sections, and the refined excerpts as block quotes.
func Markdown(output *types.CollectionOutput) string {
	var sb strings.Builder
	sb.WriteString("# Section digest\n\n")
	fmt.Fprintf(&sb, "- **Persona:** %s\n", inline(output.Metadata.Persona))
	fmt.Fprintf(&sb, "- **Task:** %s\n", inline(output.Metadata.JobToBeDone))
	fmt.Fprintf(&sb, "- **Documents:** %d\n", len(output.Metadata.InputDocuments))
	if output.Metadata.ProcessingTimestamp != "" {
		fmt.Fprintf(&sb, "- **Processed:** %s\n", output.Metadata.ProcessingTimestamp)
	}

	sb.WriteString("\n## Ranked sections\n\n")
	if len(output.ExtractedSections) == 0 {
		sb.WriteString("No sections were selected.\n")
	} else {
		sb.WriteString("| Rank | Document | Section | Page |\n|---:|---|---|---:|\n")
		for _, s := range output.ExtractedSections {
			fmt.Fprintf(&sb, "| %d | %s | %s | %d |\n", s.ImportanceRank, cell(s.Document), cell(s.SectionTitle), s.PageNumber)
		}
	}

	sb.WriteString("\n## Excerpts\n")
	if len(output.SubsectionAnalysis) == 0 {
		sb.WriteString("\nNo excerpts.\n")
	}
	for _, s := range output.SubsectionAnalysis {
		fmt.Fprintf(&sb, "\n### %s, page %d\n\n> %s\n", inline(s.Document), s.PageNumber, inline(s.RefinedText))
	}
	return sb.String()
}

// WriteHTML renders the Markdown digest of output to an HTML page at path
func WriteHTML(path string, output *types.CollectionOutput) error {
	if output == nil {
		return fmt.Errorf("no collection output to write")
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(output)), &body); err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Section digest</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, page.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}
	return nil
}

// inline flattens text onto one line so it cannot open a new block
func inline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cell(s string) string {
	return strings.ReplaceAll(inline(s), "|", `\|`)
}
