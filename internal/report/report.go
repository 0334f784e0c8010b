// Package report renders collection results as spreadsheets and HTML digests.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/outline-ranker/internal/types"
)

// Sheet names
const (
	SectionsSheet    = "Sections"
	SubsectionsSheet = "Subsections"
)

var (
	sectionHeader    = []any{"Rank", "Document", "Section Title", "Page"}
	subsectionHeader = []any{"Document", "Page", "Refined Text"}
)

// WriteXLSX writes the ranked sections and refined subsections of output to an xlsx workbook at path
func WriteXLSX(path string, output *types.CollectionOutput) error {
	if output == nil {
		return fmt.Errorf("no collection output to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SectionsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(SubsectionsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sectionRows := make([][]any, 0, len(output.ExtractedSections))
	for _, s := range output.ExtractedSections {
		sectionRows = append(sectionRows, []any{s.ImportanceRank, s.Document, s.SectionTitle, s.PageNumber})
	}
	if err := writeSheet(f, SectionsSheet, sectionHeader, sectionRows, bold); err != nil {
		return err
	}

	subRows := make([][]any, 0, len(output.SubsectionAnalysis))
	for _, s := range output.SubsectionAnalysis {
		subRows = append(subRows, []any{s.Document, s.PageNumber, s.RefinedText})
	}
	if err := writeSheet(f, SubsectionsSheet, subsectionHeader, subRows, bold); err != nil {
		return err
	}

	if err := f.SetColWidth(SectionsSheet, "B", "C", 40); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(SubsectionsSheet, "C", "C", 100); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
