package export

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/CreaseStack/internal/engine"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// crossPattern is a square with one flat-foldable degree-4 vertex.
func crossPattern() model.CreasePattern {
	cp := model.NewSquarePaper(2)
	cp.Add(0, 0, 1, 0, model.LineValley).
		Add(0, 0, 0, 1, model.LineValley).
		Add(0, 0, -1, 0, model.LineValley).
		Add(0, 0, 0, -1, model.LineMountain).
		Add(-1, -1, 1, 1, model.LineAuxiliary)
	return cp
}

func buildTestResult(t *testing.T, cp model.CreasePattern) *engine.ComputationResult {
	t.Helper()
	s := model.DefaultSettings()
	s.FullEstimation = true
	res, err := engine.New(s).Compute(context.Background(), cp)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	return res
}

func assertPDF(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output file not created: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output is not a PDF (starts with %q)", data[:min(len(data), 8)])
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	cp := crossPattern()
	result := buildTestResult(t, cp)
	path := filepath.Join(t.TempDir(), "report.pdf")

	if err := ExportPDF(path, "Cross", cp, result, model.DefaultSettings()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportPDF_NotFoldable(t *testing.T) {
	cp := model.NewSquarePaper(2)
	cp.Add(0, 0, 1, 0, model.LineMountain).
		Add(0, 0, 0, 1, model.LineValley).
		Add(0, 0, -1, 0, model.LineMountain).
		Add(0, 0, 0, -1, model.LineValley)
	result := buildTestResult(t, cp)
	if result.LocallyFlatFoldable {
		t.Fatal("expected a Maekawa violation")
	}
	path := filepath.Join(t.TempDir(), "violations.pdf")

	if err := ExportPDF(path, "Violations", cp, result, model.DefaultSettings()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportPDF_CreasePatternOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.pdf")
	if err := ExportPDF(path, "Blank", model.NewSquarePaper(100), nil, model.DefaultSettings()); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertPDF(t, path)
}

func TestExportPDF_EmptyPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ExportPDF(path, "Empty", model.CreasePattern{}, nil, model.DefaultSettings()); err == nil {
		t.Error("expected error for empty crease pattern")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written on error")
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{12, "12"},
		{1234567, "1,234,567"},
		{engine.NotFoldable, "not foldable"},
		{math.MaxInt64, "at least 9,223,372,036,854,775,807"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.n); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
