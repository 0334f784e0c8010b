package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outline-ranker/internal/extraction"
	"github.com/jonathan/outline-ranker/internal/store"
	"github.com/jonathan/outline-ranker/internal/types"
)

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, extraction.StaticSupplier{}, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "outline_agent dev")
}

func TestOutlineCommand_MissingFlags(t *testing.T) {
	_, _, err := execute(t, extraction.StaticSupplier{}, "outline", "--out", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestOutlineCommand_NoPDFs(t *testing.T) {
	_, _, err := execute(t, extraction.StaticSupplier{}, "outline", "--in", t.TempDir(), "--out", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no PDF files")
}

func TestOutlineCommand_WritesOutlines(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	dbPath := filepath.Join(t.TempDir(), "index.db")
	good := filepath.Join(in, "guide.pdf")
	bad := filepath.Join(in, "broken.pdf")
	writeFile(t, good, "%PDF")
	writeFile(t, bad, "junk")

	stdout, stderr, err := execute(t, extraction.StaticSupplier{good: travelGuide()},
		"outline", "--in", in, "--out", out, "--db", dbPath)
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "Processed: 1, Skipped: 0, Failed: 1")
	assert.Contains(t, stdout, "Successfully wrote 1 outlines")
	assert.NotContains(t, stderr, "Warning: Output validation failed")

	data, err := os.ReadFile(filepath.Join(out, "guide.json"))
	require.NoError(t, err)
	var outline types.Outline
	require.NoError(t, json.Unmarshal(data, &outline))
	assert.Equal(t, "Coastal Adventures Guide", outline.Title)
	require.Len(t, outline.Outline, 2)
	assert.Equal(t, types.OutlineEntry{Level: types.LevelH1, Text: "2 Registration Forms", Page: 2}, outline.Outline[1])

	_, err = os.Stat(filepath.Join(out, "broken.json"))
	assert.True(t, os.IsNotExist(err))

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.KindOutline, runs[0].Kind)
	assert.Equal(t, store.StatusCompleted, runs[0].Status)
}

func TestAnalyzeCommand_WritesOutputAndReport(t *testing.T) {
	inputPath, supplier := newCollection(t, t.TempDir(), "Collection 1")
	dbPath := filepath.Join(t.TempDir(), "index.db")

	stdout, stderr, err := execute(t, supplier, "analyze", "--in", inputPath, "--xlsx", "--db", dbPath)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "Processed: 1, Skipped: 0, Failed: 1")
	assert.NotContains(t, stderr, "Warning: Output validation failed")

	outPath := filepath.Join(filepath.Dir(inputPath), "Collection 1_output.json")
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var output types.CollectionOutput
	require.NoError(t, json.Unmarshal(data, &output))
	assert.Equal(t, "Travel Planner", output.Metadata.Persona)
	assert.Equal(t, []string{"guide.pdf", "missing.pdf"}, output.Metadata.InputDocuments)
	require.NotEmpty(t, output.ExtractedSections)
	assert.Equal(t, "1 Nightlife and Entertainment", output.ExtractedSections[0].SectionTitle)

	_, err = os.Stat(filepath.Join(filepath.Dir(inputPath), "Collection 1_output.xlsx"))
	assert.NoError(t, err)

	stdout, _, err = execute(t, nil, "search", "--db", dbPath, "-q", "nightlife")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 Nightlife and Entertainment")
	assert.Contains(t, stdout, "guide.pdf")

	stdout, _, err = execute(t, nil, "search", "--db", dbPath, "-q", "nightlife", "--json")
	require.NoError(t, err)
	var hits []store.SectionHit
	require.NoError(t, json.Unmarshal([]byte(stdout), &hits))
	require.NotEmpty(t, hits)
	assert.Equal(t, 1, hits[0].Rank)
}

func TestAnalyzeCommand_OverridesAndOut(t *testing.T) {
	inputPath, supplier := newCollection(t, t.TempDir(), "c1")
	outPath := filepath.Join(t.TempDir(), "result.json")

	stdout, _, err := execute(t, supplier, "analyze", "--in", inputPath, "--out", outPath,
		"--persona", "HR professional", "--task", "Create fillable forms", "--verbose", "--html")
	require.NoError(t, err)
	assert.Contains(t, stdout, "PERSONA PROFILE")
	assert.Contains(t, stdout, "BATCH SUMMARY")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var output types.CollectionOutput
	require.NoError(t, json.Unmarshal(data, &output))
	assert.Equal(t, "HR professional", output.Metadata.Persona)
	assert.Equal(t, "Create fillable forms", output.Metadata.JobToBeDone)

	digest, err := os.ReadFile(filepath.Join(filepath.Dir(outPath), "result.html"))
	require.NoError(t, err)
	assert.Contains(t, string(digest), "HR professional")
}

func TestAnalyzeCommand_DiscoversCollections(t *testing.T) {
	root := t.TempDir()
	_, first := newCollection(t, root, "a")
	_, second := newCollection(t, root, "b")
	supplier := extraction.StaticSupplier{}
	for k, v := range first {
		supplier[k] = v
	}
	for k, v := range second {
		supplier[k] = v
	}

	stdout, _, err := execute(t, supplier, "analyze", "--in", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Collection 2/2")
	assert.Contains(t, stdout, "Processed: 2, Skipped: 0, Failed: 2")

	for _, name := range []string{"a", "b"} {
		_, err := os.Stat(filepath.Join(root, name, name+"_output.json"))
		assert.NoError(t, err)
	}

	_, _, err = execute(t, supplier, "analyze", "--in", root, "--out", filepath.Join(root, "x.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single collection")
}

func TestAnalyzeCommand_BadCollectionDoesNotStopOthers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "collection_input.json"), `{"documents": [], "persona": "Travel Planner"}`)
	_, supplier := newCollection(t, root, "b")

	stdout, stderr, err := execute(t, supplier, "analyze", "--in", root)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "Collection failed")
	assert.Contains(t, stdout, "Processed: 1, Skipped: 0, Failed: 2")

	_, err = os.Stat(filepath.Join(root, "b", "b_output.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "a", "a_output.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestAnalyzeCommand_AllCollectionsFail(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "collection_input.json"), `not json`)
	writeFile(t, filepath.Join(root, "b", "collection_input.json"), `{"persona": 7}`)

	_, _, err := execute(t, extraction.StaticSupplier{}, "analyze", "--in", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection_input.json")
}

func TestAnalyzeCommand_NoCollections(t *testing.T) {
	_, _, err := execute(t, extraction.StaticSupplier{}, "analyze", "--in", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection_input.json")
}

func TestSearchCommand_RequiresIndex(t *testing.T) {
	t.Setenv("OUTLINE_AGENT_STORE_PATH", "")
	_, _, err := execute(t, nil, "search", "-q", "beaches")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no section index")
}

func TestSearchCommand_NoMatches(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	stdout, _, err := execute(t, nil, "search", "--db", dbPath, "-q", "volcano")
	require.NoError(t, err)
	assert.Contains(t, stdout, `No sections match "volcano"`)
}

func TestRootCommand_BadConfig(t *testing.T) {
	_, _, err := execute(t, nil, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "search", "-q", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
