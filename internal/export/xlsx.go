package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/CreaseStack/internal/engine"
	"github.com/piwi3910/CreaseStack/internal/layer"
	"github.com/piwi3910/CreaseStack/internal/model"
)

const linesSheet = "Lines"

// relationSymbol is the cell text for the order of row face i against
// column face j. Overlapping pairs without a solved order show "?".
func relationSymbol(o layer.Order) string {
	switch o {
	case layer.Upper:
		return "U"
	case layer.Lower:
		return "L"
	case layer.Undefined:
		return "?"
	}
	return ""
}

// ExportXLSX writes a workbook with the crease pattern lines in the
// importer's column layout, a summary sheet, and one sheet per model
// holding its face overlap matrix. For solved models the matrix shows the
// first stacking: "U" when the row face lies above the column face and
// "L" when below.
func ExportXLSX(path string, cp model.CreasePattern, result *engine.ComputationResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), linesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeLines(f, cp); err != nil {
		return err
	}

	if result != nil {
		if err := writeSummary(f, result); err != nil {
			return err
		}
		for i, mr := range result.Models {
			if err := writeRelation(f, fmt.Sprintf("Model %d", i+1), mr); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func writeLines(f *excelize.File, cp model.CreasePattern) error {
	if err := setRow(f, linesSheet, 1, "x0", "y0", "x1", "y1", "type"); err != nil {
		return err
	}
	for i, l := range cp.Lines {
		if err := setRow(f, linesSheet, i+2, l.P0.X, l.P0.Y, l.P1.X, l.P1.Y, l.Type.String()); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, result *engine.ComputationResult) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	s := result.Summary()
	rows := [][]interface{}{
		{"Models", s.Models},
		{"Faces", s.Faces},
		{"Subfaces", s.SubFaces},
		{"Locally flat-foldable", s.LocallyFlatFoldable},
		{"Foldable patterns", result.FoldablePatternCount},
		{"Status", s.Status},
	}
	for i, r := range rows {
		if err := setRow(f, sheet, i+1, r...); err != nil {
			return err
		}
	}
	return nil
}

func writeRelation(f *excelize.File, sheet string, mr engine.ModelResult) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	n := len(mr.Model.Faces)

	rel := mr.FirstRelation()

	header := make([]interface{}, n+1)
	header[0] = "face"
	for j := 0; j < n; j++ {
		header[j+1] = j
	}
	if err := setRow(f, sheet, 1, header...); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		row := make([]interface{}, n+1)
		row[0] = i
		for j := 0; j < n; j++ {
			switch {
			case i == j:
				row[j+1] = ""
			case rel != nil:
				row[j+1] = relationSymbol(rel.Get(i, j))
			case mr.SubFaces != nil && mr.SubFaces.Overlap(i, j):
				row[j+1] = relationSymbol(layer.Undefined)
			default:
				row[j+1] = ""
			}
		}
		if err := setRow(f, sheet, i+2, row...); err != nil {
			return err
		}
	}
	return nil
}
