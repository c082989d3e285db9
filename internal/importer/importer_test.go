package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/CreaseStack/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("x0,y0,x1,y1,type\n0,0,1,0,M\n0,0,0,1,V\n")
	got := DetectCSVDelimiter(data)
	if got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("x0;y0;x1;y1;type\n0;0;1;0;M\n0;0;0;1;V\n")
	got := DetectCSVDelimiter(data)
	if got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("x0\ty0\tx1\ty1\ttype\n0\t0\t1\t0\tM\n")
	got := DetectCSVDelimiter(data)
	if got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"x0", "y0", "x1", "y1", "type"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{X0: 0, Y0: 1, X1: 2, Y1: 3, Type: 4}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AlternativeNames(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Assignment", "Start X", "Start Y", "End X", "End Y"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{X0: 1, Y0: 2, X1: 3, Y1: 4, Type: 0}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"0", "0", "1", "1", "M"})
	if isHeader {
		t.Error("expected no header")
	}
	if mapping.X0 != 0 || mapping.Type != 4 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── ParseLineType Tests ───────────────────────────────────

func TestParseLineType(t *testing.T) {
	tests := []struct {
		in   string
		want model.LineType
		ok   bool
	}{
		{"Mountain", model.LineMountain, true},
		{"m", model.LineMountain, true},
		{"2", model.LineMountain, true},
		{"VALLEY", model.LineValley, true},
		{"3", model.LineValley, true},
		{"boundary", model.LineCut, true},
		{"B", model.LineCut, true},
		{"1", model.LineCut, true},
		{"aux", model.LineAuxiliary, true},
		{"U", model.LineAuxiliary, true},
		{" 0 ", model.LineAuxiliary, true},
		{"diagonal", model.LineAuxiliary, false},
	}
	for _, tt := range tests {
		got, ok := ParseLineType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLineType(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	csv := "x0,y0,x1,y1,type\n-1,-1,1,-1,B\n1,-1,1,1,B\n1,1,-1,1,B\n-1,1,-1,-1,B\n-1,-1,1,1,M\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.CreasePattern.Lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(result.CreasePattern.Lines))
	}
	last := result.CreasePattern.Lines[4]
	if last.Type != model.LineMountain {
		t.Errorf("expected mountain, got %v", last.Type)
	}
	if last.P1.X != 1 || last.P1.Y != 1 {
		t.Errorf("unexpected end point %+v", last.P1)
	}
	if result.CreasePattern.PaperSize != 2 {
		t.Errorf("expected paper size 2, got %v", result.CreasePattern.PaperSize)
	}
	if !result.OK() {
		t.Error("expected OK result")
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("0,0,3,4,valley\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.CreasePattern.Lines) != 1 || result.CreasePattern.Lines[0].Type != model.LineValley {
		t.Fatalf("unexpected lines: %+v", result.CreasePattern.Lines)
	}
	if result.CreasePattern.PaperSize != 8 {
		t.Errorf("expected paper size 8, got %v", result.CreasePattern.PaperSize)
	}
}

func TestImportCSVFromReader_UnknownHeader(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("a,b,c,d,e\n0,0,1,0,M\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.CreasePattern.Lines) != 1 {
		t.Errorf("expected 1 line, got %d", len(result.CreasePattern.Lines))
	}
}

func TestImportCSVFromReader_Reordered(t *testing.T) {
	csv := "type;ey;ex;sy;sx\nV;1;2;3;4\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ';')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	l := result.CreasePattern.Lines[0]
	if l.P0.X != 4 || l.P0.Y != 3 || l.P1.X != 2 || l.P1.Y != 1 {
		t.Errorf("unexpected line %+v", l)
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	csv := strings.Join([]string{
		"x0,y0,x1,y1,type",
		"0,0,1,0,M",
		"0,abc,1,0,M",
		"0,0,1,0,",
		"0,0,1,0,zigzag",
		"0,0,1",
		"",
		"0,0,0,0,V",
	}, "\n")
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	if len(result.CreasePattern.Lines) != 1 {
		t.Errorf("expected 1 valid line, got %d", len(result.CreasePattern.Lines))
	}
	if len(result.Errors) != 4 {
		t.Errorf("expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Invalid y0") {
		t.Errorf("unexpected first error %q", result.Errors[0])
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Zero-length") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected zero-length warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("x0,y0,x1,type\n0,0,1,M\n"), ',')
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Y1") {
		t.Errorf("expected Y1 to be reported missing, got %q", result.Errors[0])
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

func TestImportCSVFromReader_OnlyHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("x0,y0,x1,y1,type\n"), ',')
	if result.OK() {
		t.Error("expected header-only input to fail")
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cp.csv")
	content := "x0;y0;x1;y1;type\n0;0;1;0;M\n0;0;0;1;V\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.CreasePattern.Lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(result.CreasePattern.Lines))
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/cp.csv")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cp.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Start X", "Start Y", "End X", "End Y", "Line Type"},
		{-2, 0, 2, 0, "Valley"},
		{0, -2, 0, 2, "Mountain"},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.CreasePattern.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(result.CreasePattern.Lines))
	}
	if result.CreasePattern.Lines[1].Type != model.LineMountain {
		t.Errorf("expected mountain, got %v", result.CreasePattern.Lines[1].Type)
	}
	if result.CreasePattern.PaperSize != 4 {
		t.Errorf("expected paper size 4, got %v", result.CreasePattern.PaperSize)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/file.xlsx")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── ORIPA .cp Tests ───────────────────────────────────────

func TestImportCPFromReader(t *testing.T) {
	src := "1 -200 -200 200 -200\n" +
		"2 -200 -200 200 200\n" +
		"\n" +
		"3 -200 200 200 -200\n" +
		"0 0 -200 0 200\n"
	result := ImportCPFromReader(strings.NewReader(src))
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	want := []model.LineType{model.LineCut, model.LineMountain, model.LineValley, model.LineAuxiliary}
	if len(result.CreasePattern.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(result.CreasePattern.Lines))
	}
	for i, l := range result.CreasePattern.Lines {
		if l.Type != want[i] {
			t.Errorf("line %d: expected %v, got %v", i, want[i], l.Type)
		}
	}
	if result.CreasePattern.PaperSize != 400 {
		t.Errorf("expected paper size 400, got %v", result.CreasePattern.PaperSize)
	}
}

func TestImportCPFromReader_Errors(t *testing.T) {
	result := ImportCPFromReader(strings.NewReader("2 0 0 1\nx 0 0 1 1\n2 0 0 1 y\n2 0 0 1 1 9\n"))
	if len(result.Errors) != 3 {
		t.Errorf("expected 3 errors, got %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
	if len(result.CreasePattern.Lines) != 1 {
		t.Errorf("expected 1 line, got %d", len(result.CreasePattern.Lines))
	}
}

func TestImportCPFromReader_NonFiniteCoordinates(t *testing.T) {
	src := "2 NaN 0 1 0\n3 0 Inf 1 1\n2 0 0 -inf 1\n1 0 0 1 0\n"
	result := ImportCPFromReader(strings.NewReader(src))
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %v", result.Errors)
	}
	for _, e := range result.Errors {
		if !strings.Contains(e, "Invalid coordinate") {
			t.Errorf("unexpected error %q", e)
		}
	}
	if len(result.CreasePattern.Lines) != 1 {
		t.Errorf("expected 1 line, got %d", len(result.CreasePattern.Lines))
	}
}

func TestImportCSV_NonFiniteCoordinates(t *testing.T) {
	src := "x0,y0,x1,y1,type\nNaN,0,1,0,M\n0,0,+Inf,1,V\n0,0,1,1,V\n"
	result := ImportCSVFromReader(strings.NewReader(src), ',')
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Invalid x0 'NaN'") {
		t.Errorf("unexpected error %q", result.Errors[0])
	}
	if len(result.CreasePattern.Lines) != 1 {
		t.Errorf("expected 1 line, got %d", len(result.CreasePattern.Lines))
	}
}

func TestImportCP_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pattern.cp")
	if err := os.WriteFile(path, []byte("1 0 0 1 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	result := ImportCP(path)
	if !result.OK() {
		t.Fatalf("unexpected result: %+v", result)
	}
	if ImportCP(filepath.Join(t.TempDir(), "missing.cp")).OK() {
		t.Error("expected missing file to fail")
	}
}

func TestCPCode_RoundTrip(t *testing.T) {
	for _, lt := range []model.LineType{model.LineCut, model.LineMountain, model.LineValley, model.LineAuxiliary} {
		if got := cpLineType(CPCode(lt)); got != lt {
			t.Errorf("round trip of %v gave %v", lt, got)
		}
	}
}

// ─── DXF Tests ─────────────────────────────────────────────

func TestLineTypeForLayer(t *testing.T) {
	tests := []struct {
		layer string
		want  model.LineType
		ok    bool
	}{
		{"Mountain", model.LineMountain, true},
		{"V", model.LineValley, true},
		{"CP_Valley_Lines", model.LineValley, true},
		{"Paper Border", model.LineCut, true},
		{"0", model.LineAuxiliary, false},
	}
	for _, tt := range tests {
		got, ok := LineTypeForLayer(tt.layer)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LineTypeForLayer(%q) = %v, %v; want %v, %v", tt.layer, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLwPolylinePoints_Closed(t *testing.T) {
	lw := &entity.LwPolyline{
		Closed:   true,
		Vertices: [][]float64{{0, 0}, {1, 0}, {1, 1}},
	}
	lines := pointsToLines(lwPolylinePoints(lw), model.LineCut)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	last := lines[2]
	if last.P1.X != 0 || last.P1.Y != 0 {
		t.Errorf("expected closing line back to origin, got %+v", last)
	}

	lw.Closed = false
	if n := len(pointsToLines(lwPolylinePoints(lw), model.LineCut)); n != 2 {
		t.Errorf("expected 2 lines for open polyline, got %d", n)
	}
}

func TestImportDXF_FileNotFound(t *testing.T) {
	result := ImportDXF("/nonexistent/file.dxf")
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}
