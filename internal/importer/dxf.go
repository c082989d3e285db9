package importer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/CreaseStack/internal/model"
)

// layerTypes maps lowercase DXF layer names to line types. Layers are the
// usual way crease pattern editors separate mountain and valley lines.
var layerTypes = map[string]model.LineType{
	"mountain":  model.LineMountain,
	"mountains": model.LineMountain,
	"m":         model.LineMountain,
	"valley":    model.LineValley,
	"valleys":   model.LineValley,
	"v":         model.LineValley,
	"cut":       model.LineCut,
	"boundary":  model.LineCut,
	"border":    model.LineCut,
	"edge":      model.LineCut,
	"b":         model.LineCut,
	"aux":       model.LineAuxiliary,
	"auxiliary": model.LineAuxiliary,
	"flat":      model.LineAuxiliary,
	"u":         model.LineAuxiliary,
}

// LineTypeForLayer resolves the line type of a DXF layer by exact name,
// then by a known name contained in it ("CP_Mountain", "valley-lines").
func LineTypeForLayer(name string) (model.LineType, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if t, ok := layerTypes[n]; ok {
		return t, true
	}
	for _, key := range []string{"mountain", "valley", "boundary", "border", "cut", "aux"} {
		if strings.Contains(n, key) {
			return layerTypes[key], true
		}
	}
	return model.LineAuxiliary, false
}

func entityLayerName(e entity.Entity) string {
	if l := e.Layer(); l != nil {
		return l.Name()
	}
	return ""
}

// ImportDXF imports a crease pattern from a DXF file. LINE entities become
// single lines and LWPOLYLINE entities contribute one line per segment,
// including the closing segment of closed polylines. The line type comes
// from the entity's layer; lines on unrecognised layers are read as
// auxiliary with a warning. Curved entities are skipped.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	unknownLayers := make(map[string]bool)
	skipped := 0
	var lines []model.Line
	for _, ent := range entities {
		layer := entityLayerName(ent)
		lt, ok := LineTypeForLayer(layer)
		switch e := ent.(type) {
		case *entity.Line:
			lines = append(lines, model.NewLine(e.Start[0], e.Start[1], e.End[0], e.End[1], lt))

		case *entity.LwPolyline:
			pts := lwPolylinePoints(e)
			if len(pts) < 2 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 2 vertices")
				continue
			}
			lines = append(lines, pointsToLines(pts, lt)...)

		case *entity.Circle, *entity.Arc:
			skipped++
			continue

		default:
			continue
		}
		if !ok {
			unknownLayers[layer] = true
		}
	}

	if skipped > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d curved entities; crease patterns use straight lines", skipped))
	}
	names := make([]string, 0, len(unknownLayers))
	for name := range unknownLayers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Unknown layer '%s', lines read as auxiliary", name))
	}

	if len(lines) == 0 {
		result.Errors = append(result.Errors, "No lines found in DXF file")
		return result
	}

	result.CreasePattern = model.CreasePattern{
		PaperSize: PaperExtent(lines),
		Lines:     lines,
	}
	return result
}

// lwPolylinePoints lists the polyline vertices, repeating the first one at
// the end when the polyline is closed. Bulges are ignored, so arc segments
// come through as chords.
func lwPolylinePoints(lw *entity.LwPolyline) []model.Point2D {
	pts := make([]model.Point2D, 0, len(lw.Vertices)+1)
	for _, v := range lw.Vertices {
		pts = append(pts, model.Point2D{X: v[0], Y: v[1]})
	}
	if lw.Closed && len(pts) > 2 && !pointsClose(pts[0], pts[len(pts)-1], 1e-9) {
		pts = append(pts, pts[0])
	}
	return pts
}

// pointsToLines converts a point sequence to connected lines of one type.
func pointsToLines(pts []model.Point2D, t model.LineType) []model.Line {
	lines := make([]model.Line, 0, len(pts)-1)
	for i := 0; i+1 < len(pts); i++ {
		if pointsClose(pts[i], pts[i+1], 1e-9) {
			continue
		}
		lines = append(lines, model.NewLine(pts[i].X, pts[i].Y, pts[i+1].X, pts[i+1].Y, t))
	}
	return lines
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b model.Point2D, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}
