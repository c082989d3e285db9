package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/vector"

	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/layer"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// rgb is an 8-bit colour shared by the raster and PDF renderers.
type rgb struct {
	R, G, B uint8
}

func (c rgb) rgba(a uint8) color.RGBA {
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(a) / 255),
		G: uint8(uint16(c.G) * uint16(a) / 255),
		B: uint8(uint16(c.B) * uint16(a) / 255),
		A: a,
	}
}

var (
	colorMountain = rgb{R: 220, G: 40, B: 40}
	colorValley   = rgb{R: 40, G: 90, B: 220}
	colorCut      = rgb{R: 20, G: 20, B: 20}
	colorAux      = rgb{R: 170, G: 170, B: 170}
	colorFront    = rgb{R: 250, G: 235, B: 200}
	colorBack     = rgb{R: 200, G: 150, B: 90}
	colorOutline  = rgb{R: 60, G: 60, B: 60}
)

// lineColor is the drawing colour of a crease pattern line.
func lineColor(t model.LineType) rgb {
	switch t {
	case model.LineMountain:
		return colorMountain
	case model.LineValley:
		return colorValley
	case model.LineCut:
		return colorCut
	}
	return colorAux
}

// viewport maps paper coordinates into a square drawing area with the
// y axis pointing down.
type viewport struct {
	scale  float64
	ox, oy float64
	minX   float64
	maxY   float64
}

// fitViewport returns a viewport that centres the points in a size×size
// area, leaving margin on every side.
func fitViewport(pts []geom.Vec, size, margin float64) viewport {
	if len(pts) == 0 {
		return viewport{scale: 1}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	avail := size - 2*margin
	extent := max(maxX-minX, maxY-minY)
	scale := 1.0
	if extent > 0 && avail > 0 {
		scale = avail / extent
	}
	return viewport{
		scale: scale,
		ox:    margin + (avail-(maxX-minX)*scale)/2,
		oy:    margin + (avail-(maxY-minY)*scale)/2,
		minX:  minX,
		maxY:  maxY,
	}
}

func (v viewport) apply(p geom.Vec) (x, y float64) {
	return v.ox + (p.X-v.minX)*v.scale, v.oy + (v.maxY-p.Y)*v.scale
}

// PaintOrder lists the faces of m from bottom to top. Faces that overlap
// are ordered by rel; ties keep index order. A nil relation yields index
// order.
func PaintOrder(m *mesh.OrigamiModel, rel *layer.Relation) []int {
	n := len(m.Faces)
	order := make([]int, 0, n)
	if rel == nil || rel.Size() != n {
		for f := 0; f < n; f++ {
			order = append(order, f)
		}
		return order
	}

	// below[j] counts faces that must be drawn before j
	below := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && rel.IsLower(i, j) {
				below[j]++
			}
		}
	}
	done := make([]bool, n)
	for len(order) < n {
		next := -1
		for f := 0; f < n; f++ {
			if !done[f] && below[f] == 0 {
				next = f
				break
			}
		}
		if next < 0 {
			// cyclic input: fall back to the lowest remaining index
			for f := 0; f < n; f++ {
				if !done[f] {
					next = f
					break
				}
			}
		}
		done[next] = true
		order = append(order, next)
		for j := 0; j < n; j++ {
			if !done[j] && rel.IsLower(next, j) {
				below[j]--
			}
		}
	}
	return order
}

// RenderFolded draws the folded model as seen from above, painting faces
// from the bottom layer up. Faces showing the paper front use the light
// colour and faces showing the back the dark one.
func RenderFolded(m *mesh.OrigamiModel, rel *layer.Relation, size int) *image.RGBA {
	img := newCanvas(size)
	var pts []geom.Vec
	for f := range m.Faces {
		pts = append(pts, m.FoldedPolygon(f)...)
	}
	vp := fitViewport(pts, float64(size), float64(size)/20)

	z := vector.NewRasterizer(size, size)
	for _, f := range PaintOrder(m, rel) {
		poly := m.FoldedPolygon(f)
		fill := colorFront
		if !m.Faces[f].Front {
			fill = colorBack
		}
		z.Reset(size, size)
		tracePolygon(z, vp, poly)
		z.Draw(img, img.Bounds(), image.NewUniform(fill.rgba(255)), image.Point{})

		z.Reset(size, size)
		for i := range poly {
			traceStroke(z, vp, poly.Edge(i), 1)
		}
		z.Draw(img, img.Bounds(), image.NewUniform(colorOutline.rgba(255)), image.Point{})
	}
	return img
}

// RenderCreasePattern draws the crease pattern lines coloured by type.
func RenderCreasePattern(cp model.CreasePattern, size int) *image.RGBA {
	img := newCanvas(size)
	pts := make([]geom.Vec, 0, 2*len(cp.Lines))
	for _, l := range cp.Lines {
		pts = append(pts, geom.FromPoint(l.P0), geom.FromPoint(l.P1))
	}
	vp := fitViewport(pts, float64(size), float64(size)/20)

	z := vector.NewRasterizer(size, size)
	// auxiliary lines underneath, cuts on top
	for _, t := range []model.LineType{model.LineAuxiliary, model.LineValley, model.LineMountain, model.LineCut} {
		z.Reset(size, size)
		drawn := false
		for _, l := range cp.Lines {
			if l.Type != t {
				continue
			}
			traceStroke(z, vp, geom.Seg(geom.FromPoint(l.P0), geom.FromPoint(l.P1)), 2)
			drawn = true
		}
		if drawn {
			z.Draw(img, img.Bounds(), image.NewUniform(lineColor(t).rgba(255)), image.Point{})
		}
	}
	return img
}

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func newCanvas(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

func tracePolygon(z *vector.Rasterizer, vp viewport, p geom.Polygon) {
	if len(p) < 3 {
		return
	}
	x, y := vp.apply(p[0])
	z.MoveTo(float32(x), float32(y))
	for _, q := range p[1:] {
		x, y = vp.apply(q)
		z.LineTo(float32(x), float32(y))
	}
	z.ClosePath()
}

// traceStroke adds a rectangle of the given pixel width around s.
func traceStroke(z *vector.Rasterizer, vp viewport, s geom.Segment, width float64) {
	ax, ay := vp.apply(s.P0)
	bx, by := vp.apply(s.P1)
	dx, dy := bx-ax, by-ay
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	z.MoveTo(float32(ax+nx), float32(ay+ny))
	z.LineTo(float32(bx+nx), float32(by+ny))
	z.LineTo(float32(bx-nx), float32(by-ny))
	z.LineTo(float32(ax-nx), float32(ay-ny))
	z.ClosePath()
}
