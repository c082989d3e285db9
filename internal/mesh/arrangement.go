package mesh

import (
	"github.com/piwi3910/CreaseStack/internal/geom"
)

// TraceArrangement overlays the segments, splitting them where they meet,
// and returns the bounded faces of the resulting planar subdivision as
// counter-clockwise polygons. Faces with area below eps² are dropped.
func TraceArrangement(segs []geom.Segment, eps float64) []geom.Polygon {
	cuts := splitParams(segs, eps)

	points := newPointSet(eps)
	seen := make(map[[2]int]bool)
	var ends [][2]int
	for i, s := range segs {
		if s.Len() <= eps {
			continue
		}
		ts := cuts[i]
		for k := 0; k+1 < len(ts); k++ {
			a := points.add(s.At(ts[k]))
			b := points.add(s.At(ts[k+1]))
			if a == b {
				continue
			}
			key := [2]int{min(a, b), max(a, b)}
			if seen[key] {
				continue
			}
			seen[key] = true
			ends = append(ends, [2]int{a, b})
		}
	}
	if len(ends) == 0 {
		return nil
	}

	g := newPlanarGraph(points.pts, ends)
	cycles, _, ok := g.traceCycles(2*len(ends) + 1)
	if !ok {
		return nil
	}
	var out []geom.Polygon
	for _, c := range cycles {
		p := g.cyclePolygon(c)
		if p.SignedArea() > eps*eps {
			out = append(out, p)
		}
	}
	return out
}
