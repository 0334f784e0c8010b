package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/outline-ranker/internal/types"
)

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "collection.xlsx")
	output := &types.CollectionOutput{
		ExtractedSections: []types.ExtractedSection{
			{Document: "nice.pdf", SectionTitle: "Nightlife and Entertainment", ImportanceRank: 1, PageNumber: 2},
			{Document: "lyon.pdf", SectionTitle: "Restaurants", ImportanceRank: 2, PageNumber: 5},
		},
		SubsectionAnalysis: []types.SubsectionAnalysis{
			{Document: "nice.pdf", RefinedText: "Bars stay open until dawn.", PageNumber: 2},
		},
	}

	require.NoError(t, WriteXLSX(path, output))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SectionsSheet, SubsectionsSheet}, f.GetSheetList())

	rows, err := f.GetRows(SectionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Rank", "Document", "Section Title", "Page"}, rows[0])
	assert.Equal(t, []string{"1", "nice.pdf", "Nightlife and Entertainment", "2"}, rows[1])

	rows, err = f.GetRows(SubsectionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"nice.pdf", "2", "Bars stay open until dawn."}, rows[1])
}

func TestWriteXLSX_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, &types.CollectionOutput{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SubsectionsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteXLSX_NilOutput(t *testing.T) {
	assert.Error(t, WriteXLSX(filepath.Join(t.TempDir(), "x.xlsx"), nil))
}
