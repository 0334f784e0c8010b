package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outline-ranker/internal/extraction"
	"github.com/jonathan/outline-ranker/internal/types"
)

// line builds a single-span line whose top edge sits at y
func line(page int, text string, size, y, width float64) types.Line {
	return types.Line{Page: page, Spans: []types.Span{{
		Text:     text,
		FontSize: size,
		Page:     page,
		BBox:     types.BBox{X0: 72, Y0: y, X1: 72 + width, Y1: y + size},
	}}}
}

func page(n int, lines ...types.Line) types.Page {
	return types.Page{Number: n, Width: 612, Height: 792, Lines: lines}
}

const body = "The old town is full of small bars and late night venues that stay open until dawn. " +
	"Groups of friends can move between rooftop terraces and beach clubs along the promenade. " +
	"Most places get busy after eleven."

func travelGuide() *types.Document {
	return &types.Document{
		ID: "nice.pdf",
		Pages: []types.Page{
			page(1,
				line(1, "Travel Guide to Nice", 24, 100, 300),
				line(1, "1 Introduction", 16, 150, 150),
				line(1, "Nice sits on the Mediterranean coast.", 11, 180, 400),
				line(1, "It is easy to reach by train.", 11, 195, 400),
				line(1, "Page 1", 9, 760, 40),
			),
			page(2,
				line(2, "Nightlife and Entertainment", 16, 100, 250),
				line(2, body, 11, 130, 450),
				line(2, "Hotel Registration Forms", 16, 300, 250),
				line(2, "Fill in the form.", 11, 330, 400),
				line(2, "Bring a copy of your passport.", 11, 345, 400),
			),
		},
	}
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestOutlineFromDocument(t *testing.T) {
	p := New(extraction.StaticSupplier{}, DefaultOptions())

	got := p.OutlineFromDocument(travelGuide())

	assert.Equal(t, "Travel Guide to Nice", got.Title)
	require.Len(t, got.Outline, 3)
	assert.Equal(t, types.OutlineEntry{Level: types.LevelH1, Text: "1 Introduction", Page: 1}, got.Outline[0])
	assert.Equal(t, "Nightlife and Entertainment", got.Outline[1].Text)
	assert.Equal(t, 2, got.Outline[1].Page)
	for _, e := range got.Outline {
		assert.NotEqual(t, "Page 1", e.Text)
	}
}

func TestOutlineFromDocument_MetadataTitleFallback(t *testing.T) {
	doc := &types.Document{
		ID:            "untitled.pdf",
		MetadataTitle: "Annual  Report",
		Pages:         []types.Page{page(1, line(1, "short", 11, 100, 40))},
	}

	opts := DefaultOptions()
	assert.Empty(t, New(extraction.StaticSupplier{}, opts).OutlineFromDocument(doc).Title)

	opts.MetadataTitleFallback = true
	assert.Equal(t, "Annual Report", New(extraction.StaticSupplier{}, opts).OutlineFromDocument(doc).Title)
}

func TestOutlineFromDocument_FooterOnlyPage(t *testing.T) {
	doc := &types.Document{
		ID:    "footer.pdf",
		Pages: []types.Page{page(1, line(1, "1 Introduction", 16, 760, 150))},
	}

	got := New(extraction.StaticSupplier{}, DefaultOptions()).OutlineFromDocument(doc)
	assert.Empty(t, got.Outline)
}

func TestOutlineBatch_KeepsOrderAndIsolatesFailures(t *testing.T) {
	supplier := extraction.StaticSupplier{"a.pdf": travelGuide(), "c.pdf": travelGuide()}
	opts := DefaultOptions()
	opts.Workers = 2

	var mu sync.Mutex
	var events []ProgressEvent
	opts.OnProgress = func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	results, batch := New(supplier, opts).OutlineBatch(context.Background(), []string{"a.pdf", "missing.pdf", "c.pdf"})

	require.Len(t, results, 3)
	assert.Equal(t, "a.pdf", results[0].Path)
	assert.NotNil(t, results[0].Outline)
	assert.Error(t, results[1].Err)
	assert.Equal(t, "c.pdf", results[2].Path)

	assert.Equal(t, 2, batch.Processed)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, 3, batch.Total())
	assert.True(t, batch.HasFailures())
	assert.NotEmpty(t, events)
}

func TestAnalyzeCollection_TravelPlanner(t *testing.T) {
	supplier := extraction.StaticSupplier{
		filepath.Join("col", "PDFs", "nice.pdf"): travelGuide(),
	}
	opts := DefaultOptions()
	opts.Now = fixedNow

	input := &types.CollectionInput{
		Documents: []types.DocumentRef{
			{Filename: "nice.pdf"},
			{Filename: "missing.pdf"},
			{Filename: "../secret.pdf"},
		},
		Persona:      types.Persona{Role: "Travel Planner"},
		JobToBeDone:  types.JobToBeDone{Task: "Plan a trip of 4 days for a group of 10 college friends."},
		DocumentsDir: filepath.Join("col", "PDFs"),
	}

	result, err := New(supplier, opts).AnalyzeCollection(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "travel", result.Profile.Family)
	assert.Equal(t, 1, result.Batch.Processed)
	assert.Equal(t, 1, result.Batch.Failed)
	assert.Equal(t, 1, result.Batch.Skipped)

	out := result.Output
	assert.Equal(t, []string{"nice.pdf", "missing.pdf", "../secret.pdf"}, out.Metadata.InputDocuments)
	assert.Equal(t, "Travel Planner", out.Metadata.Persona)
	assert.Equal(t, "2025-03-01T12:00:00Z", out.Metadata.ProcessingTimestamp)

	require.NotEmpty(t, out.ExtractedSections)
	rankOf := map[string]int{}
	for i, s := range out.ExtractedSections {
		assert.Equal(t, i+1, s.ImportanceRank)
		assert.Equal(t, "nice.pdf", s.Document)
		rankOf[s.SectionTitle] = s.ImportanceRank
	}
	require.Contains(t, rankOf, "Nightlife and Entertainment")
	if r, ok := rankOf["Hotel Registration Forms"]; ok {
		assert.Less(t, rankOf["Nightlife and Entertainment"], r)
	}

	require.NotEmpty(t, out.SubsectionAnalysis)
	assert.Equal(t, 2, out.SubsectionAnalysis[0].PageNumber)
}

func TestAnalyzeCollection_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := &types.CollectionInput{Documents: []types.DocumentRef{{Filename: "a.pdf"}}}
	_, err := New(extraction.StaticSupplier{"a.pdf": travelGuide()}, DefaultOptions()).AnalyzeCollection(ctx, input)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"guide.pdf", false},
		{"South of France - Cities.pdf", false},
		{"", true},
		{"   ", true},
		{"..", true},
		{".", true},
		{"../etc/passwd", true},
		{"sub/guide.pdf", true},
		{`sub\guide.pdf`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadCollectionInput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Collection 1")
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, "collection_input.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"challenge_info": {"challenge_id": "round_1b_002"},
		"documents": [{"filename": "a.pdf", "title": "A"}],
		"persona": {"role": "Travel Planner"}
	}`), 0600))

	input, err := LoadCollectionInput(path, "")
	require.NoError(t, err)

	assert.Equal(t, "Travel Planner", input.Persona.Role)
	assert.Empty(t, input.JobToBeDone.Task)
	require.NotNil(t, input.Challenge)
	assert.Equal(t, "round_1b_002", input.Challenge.ChallengeID)
	assert.Equal(t, filepath.Join(dir, "PDFs"), input.DocumentsDir)
	assert.Equal(t, filepath.Join(dir, "Collection 1_output.json"), OutputPath(path))
}

func TestLoadCollectionInput_Errors(t *testing.T) {
	_, err := LoadCollectionInput(filepath.Join(t.TempDir(), "nope.json"), "")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0600))
	_, err = LoadCollectionInput(bad, "")
	assert.Error(t, err)
}

func TestDiscoverCollections(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"b", "a", "a/nested"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, d, "collection_input.json"), []byte("{}"), 0600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.json"), []byte("{}"), 0600))

	found, err := DiscoverCollections(root, "collection_input.json")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a", "collection_input.json"),
		filepath.Join(root, "a", "nested", "collection_input.json"),
		filepath.Join(root, "b", "collection_input.json"),
	}, found)

	single, err := DiscoverCollections(found[0], "collection_input.json")
	require.NoError(t, err)
	assert.Equal(t, found[:1], single)
}

func TestCollectionResult_RankedSections(t *testing.T) {
	a := types.ScoredSection{Section: types.Section{DocumentID: "a.pdf", Title: "Beaches", StartPage: 1}, Score: 9}
	b := types.ScoredSection{Section: types.Section{DocumentID: "a.pdf", Title: "Forms", StartPage: 2}, Score: 1}
	selected := a
	selected.Rank = 1

	r := &CollectionResult{Scored: []types.ScoredSection{a, b}, Selected: []types.ScoredSection{selected}}
	got := r.RankedSections()

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 0, got[1].Rank)
	assert.Equal(t, 0, r.Scored[0].Rank)
}

func TestDiscoverPDFs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))
	for _, name := range []string{"b.pdf", "A.PDF", "notes.txt", filepath.Join("sub", "c.pdf")} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("%PDF"), 0600))
	}

	found, err := DiscoverPDFs(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "A.PDF"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "sub", "c.pdf"),
	}, found)

	_, err = DiscoverPDFs(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestOutlinePath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "file01.json"), OutlinePath("out", filepath.Join("in", "file01.pdf")))
	assert.Equal(t, filepath.Join("out", "Report.v2.json"), OutlinePath("out", "Report.v2.PDF"))
}
