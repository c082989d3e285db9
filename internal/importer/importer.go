// Package importer reads crease patterns from line tables (CSV and Excel),
// DXF drawings and ORIPA .cp files. Table import supports automatic delimiter
// detection, flexible column mapping and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/CreaseStack/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	CreasePattern model.CreasePattern
	Errors        []string
	Warnings      []string
}

// OK reports whether the import produced lines without errors.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.CreasePattern.Lines) > 0
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	X0   int
	Y0   int
	X1   int
	Y1   int
	Type int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"x0":   {"x0", "start x", "startx", "sx", "from x", "ax"},
	"y0":   {"y0", "start y", "starty", "sy", "from y", "ay"},
	"x1":   {"x1", "end x", "endx", "ex", "to x", "bx"},
	"y1":   {"y1", "end y", "endy", "ey", "to y", "by"},
	"type": {"type", "line type", "linetype", "kind", "assignment", "fold"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Matching is case-insensitive against the known aliases of each role.
// Without a recognised header the positional mapping x0, y0, x1, y1, type
// is returned together with false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{X0: -1, Y0: -1, X1: -1, Y1: -1, Type: -1}
	slots := map[string]*int{
		"x0":   &mapping.X0,
		"y0":   &mapping.Y0,
		"x1":   &mapping.X1,
		"y1":   &mapping.Y1,
		"type": &mapping.Type,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if slot := slots[role]; *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{X0: 0, Y0: 1, X1: 2, Y1: 3, Type: 4}, false
	}
	return mapping, true
}

// ParseLineType converts a line type name or code to a model.LineType. The
// numeric codes follow ORIPA: 0 auxiliary, 1 cut, 2 mountain, 3 valley.
// The boolean reports whether the string was recognised.
func ParseLineType(s string) (model.LineType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mountain", "m", "2":
		return model.LineMountain, true
	case "valley", "v", "3":
		return model.LineValley, true
	case "cut", "boundary", "border", "edge", "b", "c", "1":
		return model.LineCut, true
	case "aux", "auxiliary", "u", "f", "none", "0", "-":
		return model.LineAuxiliary, true
	default:
		return model.LineAuxiliary, false
	}
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a Line from a row using the given column mapping.
// Returns the line, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.Line, string, string) {
	coords := [4]float64{}
	names := [4]string{"x0", "y0", "x1", "y1"}
	cols := [4]int{mapping.X0, mapping.Y0, mapping.X1, mapping.Y1}
	for k, col := range cols {
		s := getCell(row, col)
		if s == "" {
			return model.Line{}, fmt.Sprintf("%s: Missing %s value", rowLabel, names[k]), ""
		}
		v, ok := parseCoordinate(s)
		if !ok {
			return model.Line{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, names[k], s), ""
		}
		coords[k] = v
	}

	typeStr := getCell(row, mapping.Type)
	if typeStr == "" {
		return model.Line{}, fmt.Sprintf("%s: Missing line type", rowLabel), ""
	}
	lt, ok := ParseLineType(typeStr)
	if !ok {
		return model.Line{}, fmt.Sprintf("%s: Unknown line type '%s'", rowLabel, typeStr), ""
	}

	var warning string
	if coords[0] == coords[2] && coords[1] == coords[3] {
		warning = fmt.Sprintf("%s: Zero-length line", rowLabel)
	}
	return model.NewLine(coords[0], coords[1], coords[2], coords[3], lt), "", warning
}

// parseCoordinate parses a finite number; NaN and Inf are rejected.
func parseCoordinate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// PaperExtent returns the side of the smallest origin-centred square that
// holds every line endpoint.
func PaperExtent(lines []model.Line) float64 {
	half := 0.0
	for _, l := range lines {
		for _, p := range []model.Point2D{l.P0, l.P1} {
			half = max(half, math.Abs(p.X), math.Abs(p.Y))
		}
	}
	return 2 * half
}

// ImportCSV imports a crease pattern from a CSV line table.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports a crease pattern from a CSV reader with a
// specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports a crease pattern from the first sheet of an Excel
// workbook, auto-detecting the column mapping from its header.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into a line.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		for name, col := range map[string]int{"X0": mapping.X0, "Y0": mapping.Y0, "X1": mapping.X1, "Y1": mapping.Y1, "Type": mapping.Type} {
			if col == -1 {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 4 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][0]), 64); err != nil {
			// unrecognised header: skip it but keep the positional mapping
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		line, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
			continue
		}
		result.CreasePattern.Lines = append(result.CreasePattern.Lines, line)
	}

	if len(result.CreasePattern.Lines) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No lines found")
	}
	result.CreasePattern.PaperSize = PaperExtent(result.CreasePattern.Lines)
	return result
}
