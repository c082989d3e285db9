package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/CreaseStack/internal/model"
)

// ImportCP imports an ORIPA crease pattern file: one line per segment,
// written as "type x0 y0 x1 y1" with type 1 cut, 2 mountain, 3 valley and
// anything else auxiliary.
func ImportCP(path string) ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	defer f.Close()
	return ImportCPFromReader(f)
}

// ImportCPFromReader imports a crease pattern in ORIPA .cp format.
func ImportCPFromReader(r io.Reader) ImportResult {
	result := ImportResult{}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		rowLabel := fmt.Sprintf("Line %d", lineNum)
		if len(fields) < 5 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Expected 5 fields, got %d", rowLabel, len(fields)))
			continue
		}

		code, err := strconv.Atoi(fields[0])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Invalid line type '%s'", rowLabel, fields[0]))
			continue
		}

		var c [4]float64
		bad := false
		for k := range c {
			var ok bool
			if c[k], ok = parseCoordinate(fields[k+1]); !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: Invalid coordinate '%s'", rowLabel, fields[k+1]))
				bad = true
				break
			}
		}
		if bad {
			continue
		}
		if len(fields) > 5 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Ignored %d extra fields", rowLabel, len(fields)-5))
		}

		result.CreasePattern.Lines = append(result.CreasePattern.Lines,
			model.NewLine(c[0], c[1], c[2], c[3], cpLineType(code)))
	}
	if err := scanner.Err(); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read file: %v", err))
		return result
	}

	if len(result.CreasePattern.Lines) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No lines found")
	}
	result.CreasePattern.PaperSize = PaperExtent(result.CreasePattern.Lines)
	return result
}

func cpLineType(code int) model.LineType {
	switch code {
	case 1:
		return model.LineCut
	case 2:
		return model.LineMountain
	case 3:
		return model.LineValley
	default:
		return model.LineAuxiliary
	}
}

// CPCode returns the ORIPA .cp code of a line type.
func CPCode(t model.LineType) int {
	switch t {
	case model.LineCut:
		return 1
	case model.LineMountain:
		return 2
	case model.LineValley:
		return 3
	default:
		return 0
	}
}
