package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/CreaseStack/internal/foldformat"
	"github.com/piwi3910/CreaseStack/internal/project"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	config := filepath.Join(t.TempDir(), "config.json")
	code := run(context.Background(), append([]string{"-config", config}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunTemplateWithOutputs(t *testing.T) {
	dir := t.TempDir()
	foldPath := filepath.Join(dir, "cross.fold")
	pngPath := filepath.Join(dir, "cross.png")
	projPath := filepath.Join(dir, "cross"+project.Extension)

	code, out, errOut := runCLI(t, "-template", "double fold", "-full",
		"-o", foldPath, "-o", pngPath, "-o", projPath)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "Double Fold: 8 lines") {
		t.Errorf("missing line summary in output:\n%s", out)
	}
	if !strings.Contains(out, "Foldable patterns:") || strings.Contains(out, "not foldable") {
		t.Errorf("expected a foldable result:\n%s", out)
	}

	doc, err := foldformat.LoadFile(foldPath)
	if err != nil {
		t.Fatalf("cannot read FOLD output: %v", err)
	}
	if len(doc.FacesVertices) != 4 {
		t.Errorf("expected 4 faces, got %d", len(doc.FacesVertices))
	}
	if len(doc.FaceOrders) == 0 {
		t.Error("expected face orders in the FOLD output")
	}

	png, err := os.ReadFile(pngPath)
	if err != nil || !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("expected PNG output, err=%v", err)
	}

	proj, err := project.Load(projPath)
	if err != nil {
		t.Fatalf("cannot load saved project: %v", err)
	}
	if proj.Summary == nil || proj.Summary.Faces != 4 {
		t.Errorf("expected saved summary with 4 faces, got %+v", proj.Summary)
	}
}

func TestRunCPInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "violation.cp")
	cp := strings.Join([]string{
		"1 -1 -1 1 -1", "1 1 -1 1 1", "1 1 1 -1 1", "1 -1 1 -1 -1",
		"2 0 0 1 0", "3 0 0 0 1", "2 0 0 -1 0", "3 0 0 0 -1",
	}, "\n")
	if err := os.WriteFile(input, []byte(cp), 0644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runCLI(t, "-compare", input)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "not foldable") {
		t.Errorf("expected a Maekawa failure:\n%s", out)
	}
	if !strings.Contains(out, "SCENARIO") {
		t.Errorf("expected the comparison table:\n%s", out)
	}
}

func TestRunErrors(t *testing.T) {
	if code, _, _ := runCLI(t); code != 2 {
		t.Errorf("no input: expected exit 2, got %d", code)
	}
	if code, _, _ := runCLI(t, "-template", "x", "also.cp"); code != 2 {
		t.Errorf("template and file: expected exit 2, got %d", code)
	}
	if code, _, errOut := runCLI(t, "-template", "no such template"); code != 1 || !strings.Contains(errOut, "unknown template") {
		t.Errorf("unknown template: got %d %q", code, errOut)
	}
	if code, _, _ := runCLI(t, filepath.Join(t.TempDir(), "pattern.svg")); code != 1 {
		t.Errorf("unsupported input: expected exit 1, got %d", code)
	}
	if code, _, errOut := runCLI(t, "-template", "blank square", "-o", "out.svg"); code != 1 || !strings.Contains(errOut, "unsupported output") {
		t.Errorf("unsupported output: got %d %q", code, errOut)
	}
}
