package export

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/layer"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/model"
)

func TestPaintOrder(t *testing.T) {
	m := &mesh.OrigamiModel{Faces: make([]mesh.Face, 4)}

	rel := layer.NewRelation(4)
	rel.Set(0, 1, layer.Upper)
	rel.Set(1, 2, layer.Upper)
	rel.Set(0, 2, layer.Upper)

	got := PaintOrder(m, rel)
	want := []int{2, 1, 0, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	plain := PaintOrder(m, nil)
	for i, f := range plain {
		if f != i {
			t.Fatalf("expected index order without a relation, got %v", plain)
		}
	}
}

func TestFitViewport(t *testing.T) {
	vp := fitViewport([]geom.Vec{geom.V(-1, -1), geom.V(1, 1)}, 100, 10)
	x, y := vp.apply(geom.V(-1, 1))
	if x != 10 || y != 10 {
		t.Errorf("top-left corner mapped to (%v, %v), want (10, 10)", x, y)
	}
	x, y = vp.apply(geom.V(1, -1))
	if x != 90 || y != 90 {
		t.Errorf("bottom-right corner mapped to (%v, %v), want (90, 90)", x, y)
	}
}

func TestRenderFolded(t *testing.T) {
	result := buildTestResult(t, crossPattern())
	mr := result.Models[0]
	img := RenderFolded(mr.Model, mr.Stacking.Relations[0], 200)

	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 200 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	centre := img.RGBAAt(100, 100)
	if centre == (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Error("expected the folded paper to cover the image centre")
	}
	corner := img.RGBAAt(1, 1)
	if corner != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("expected white margin, got %v", corner)
	}
}

func TestRenderCreasePattern(t *testing.T) {
	img := RenderCreasePattern(crossPattern(), 200)
	mountain := colorMountain.rgba(255)
	valley := colorValley.rgba(255)

	var sawMountain, sawValley bool
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			switch img.RGBAAt(x, y) {
			case mountain:
				sawMountain = true
			case valley:
				sawValley = true
			}
		}
	}
	if !sawMountain || !sawValley {
		t.Errorf("expected mountain and valley strokes, got mountain=%v valley=%v", sawMountain, sawValley)
	}
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(RenderCreasePattern(model.NewSquarePaper(10), 32))
	if err != nil {
		t.Fatalf("EncodePNG returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}
}
