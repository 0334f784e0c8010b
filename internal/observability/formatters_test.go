package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/outline-ranker/internal/pipeline"
	"github.com/jonathan/outline-ranker/internal/types"
)

func TestPrintOutline(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOutline("guide.pdf", &types.Outline{
		Title: "Understanding AI",
		Outline: []types.OutlineEntry{
			{Level: types.LevelH1, Text: "1 Introduction", Page: 1},
			{Level: types.LevelH2, Text: "1.1 Background", Page: 2},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "DOCUMENT OUTLINE")
	assert.Contains(t, output, "guide.pdf")
	assert.Contains(t, output, "Understanding AI")
	assert.Contains(t, output, "H1 1 Introduction (p.1)")
	assert.Contains(t, output, "  H2 1.1 Background (p.2)")
}

func TestPrintOutline_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintOutline("x.pdf", nil)
	assert.Empty(t, buf.String())
}

func TestPrintOutline_TruncatesLongList(t *testing.T) {
	var buf bytes.Buffer
	outline := &types.Outline{}
	for i := 0; i < 8; i++ {
		outline.Outline = append(outline.Outline, types.OutlineEntry{Level: types.LevelH1, Text: "Heading", Page: i + 1})
	}

	NewPrinter(&buf).PrintOutline("x.pdf", outline)

	assert.Contains(t, buf.String(), "(none)")
	assert.Contains(t, buf.String(), "... and 3 more headings")
}

func TestPrintPersonaProfile(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintPersonaProfile(&types.PersonaProfile{
		Role:   "Travel Planner",
		Task:   "Plan a trip",
		Family: "travel",
		High:   []string{"itinerary", "group"},
		Medium: []string{"plan", "trip"},
	})
	output := buf.String()

	assert.Contains(t, output, "PERSONA PROFILE")
	assert.Contains(t, output, "travel")
	assert.Contains(t, output, "itinerary, group")
	assert.Contains(t, output, "plan, trip")
}

func TestPrintRankedSections(t *testing.T) {
	var buf bytes.Buffer
	sections := []types.ScoredSection{{
		Section: types.Section{DocumentID: "nice.pdf", Title: "Nightlife", StartPage: 3},
		Score:   21.5,
		Rank:    1,
		Notes:   "high: nightlife; level: H1",
	}}

	NewPrinter(&buf).PrintRankedSections(sections)
	output := buf.String()

	assert.Contains(t, output, "TOP RANKED SECTIONS")
	assert.Contains(t, output, "#1  Nightlife")
	assert.Contains(t, output, "nice.pdf p.3  Score: 21.50")
	assert.Contains(t, output, "    high: nightlife; level: H1")
}

func TestPrintRankedSections_NoNotes(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRankedSections([]types.ScoredSection{{
		Section: types.Section{DocumentID: "nice.pdf", Title: "Beaches", StartPage: 1},
		Score:   4,
		Rank:    1,
	}})

	assert.Contains(t, buf.String(), "#1  Beaches")
	assert.NotContains(t, buf.String(), "high:")
}

func TestPrintRankedSections_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRankedSections(nil)
	assert.Empty(t, buf.String())
}

func TestPrintSubsections(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSubsections([]types.Subsection{
		{DocumentID: "nice.pdf", Page: 2, RefinedText: strings.Repeat("é", 80)},
	})
	output := buf.String()

	assert.Contains(t, output, "REFINED SUBSECTIONS")
	assert.Contains(t, output, strings.Repeat("é", 47)+"...")
	assert.Contains(t, output, "[nice.pdf p.2]")
}

func TestPrintBatchSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBatchSummary(pipeline.BatchResult{Processed: 3})
	assert.Contains(t, buf.String(), "ALL 3 DOCUMENTS PROCESSED")

	buf.Reset()
	p.PrintBatchSummary(pipeline.BatchResult{
		Processed: 1,
		Failed:    1,
		Failures:  []pipeline.Failure{{Document: "bad.pdf", Reason: "malformed PDF"}},
	})
	output := buf.String()
	assert.Contains(t, output, "BATCH SUMMARY")
	assert.Contains(t, output, "Failed:    1")
	assert.Contains(t, output, "bad.pdf")
	assert.Contains(t, output, "malformed PDF")
}

func TestPrintBox_LineWidth(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("T", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
}
