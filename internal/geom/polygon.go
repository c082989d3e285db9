package geom

import (
	"math"
	"sort"

	"github.com/piwi3910/CreaseStack/internal/model"
)

// Polygon is a simple polygon; the last vertex connects back to the first.
type Polygon []Vec

// PolygonFromOutline converts a crease pattern outline.
func PolygonFromOutline(o model.Outline) Polygon {
	p := make(Polygon, len(o))
	for i, pt := range o {
		p[i] = FromPoint(pt)
	}
	return p
}

// Outline converts the polygon to a crease pattern outline.
func (p Polygon) Outline() model.Outline {
	o := make(model.Outline, len(p))
	for i, v := range p {
		o[i] = v.Point()
	}
	return o
}

// Edge returns the i-th boundary segment.
func (p Polygon) Edge(i int) Segment {
	return Segment{P0: p[i], P1: p[(i+1)%len(p)]}
}

// SignedArea is positive for counter-clockwise polygons (shoelace formula).
func (p Polygon) SignedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return area / 2
}

func (p Polygon) Area() float64 { return math.Abs(p.SignedArea()) }

func (p Polygon) IsCCW() bool { return p.SignedArea() > 0 }

// Reversed returns the polygon with opposite winding.
func (p Polygon) Reversed() Polygon {
	r := make(Polygon, len(p))
	for i, v := range p {
		r[len(p)-1-i] = v
	}
	return r
}

// Centroid returns the area centroid, falling back to the vertex mean for
// degenerate polygons.
func (p Polygon) Centroid() Vec {
	if len(p) == 0 {
		return Vec{}
	}
	a := p.SignedArea()
	if a == 0 {
		var s Vec
		for _, v := range p {
			s = s.Add(v)
		}
		return s.Scale(1 / float64(len(p)))
	}
	var cx, cy float64
	n := len(p)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		f := p[i].X*p[j].Y - p[j].X*p[i].Y
		cx += (p[i].X + p[j].X) * f
		cy += (p[i].Y + p[j].Y) * f
	}
	return Vec{cx / (6 * a), cy / (6 * a)}
}

// Containment classifies a point against a polygon.
type Containment int

const (
	Outside Containment = iota
	OnBoundary
	Inside
)

// Locate classifies q as inside, outside or within eps of the boundary.
// Works for either winding.
func (p Polygon) Locate(q Vec, eps float64) Containment {
	n := len(p)
	if n < 3 {
		return Outside
	}
	for i := 0; i < n; i++ {
		if p.Edge(i).Contains(q, eps) {
			return OnBoundary
		}
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > q.Y) != (b.Y > q.Y) {
			x := (b.X-a.X)*(q.Y-a.Y)/(b.Y-a.Y) + a.X
			if q.X < x {
				inside = !inside
			}
		}
	}
	if inside {
		return Inside
	}
	return Outside
}

// StrictlyContains reports whether q is inside the polygon and farther than
// eps from its boundary.
func (p Polygon) StrictlyContains(q Vec, eps float64) bool {
	return p.Locate(q, eps) == Inside
}

// InteriorPoint returns a point strictly inside the polygon. The centroid is
// used when it qualifies; otherwise a horizontal scanline between two vertex
// heights picks the midpoint of its widest interior span.
func (p Polygon) InteriorPoint(eps float64) (Vec, bool) {
	if len(p) < 3 {
		return Vec{}, false
	}
	if c := p.Centroid(); p.StrictlyContains(c, eps) {
		return c, true
	}

	ys := make([]float64, 0, len(p))
	for _, v := range p {
		ys = append(ys, v.Y)
	}
	sort.Float64s(ys)

	for k := 0; k+1 < len(ys); k++ {
		if ys[k+1]-ys[k] <= 2*eps {
			continue
		}
		y := (ys[k] + ys[k+1]) / 2
		var xs []float64
		for i := range p {
			e := p.Edge(i)
			if (e.P0.Y > y) != (e.P1.Y > y) {
				xs = append(xs, e.P0.X+(y-e.P0.Y)*(e.P1.X-e.P0.X)/(e.P1.Y-e.P0.Y))
			}
		}
		sort.Float64s(xs)
		best, bestW := Vec{}, 0.0
		for i := 0; i+1 < len(xs); i += 2 {
			if w := xs[i+1] - xs[i]; w > bestW {
				bestW = w
				best = Vec{(xs[i] + xs[i+1]) / 2, y}
			}
		}
		if bestW > 2*eps && p.StrictlyContains(best, eps) {
			return best, true
		}
	}
	return Vec{}, false
}

// SegmentCrossesInterior reports whether some part of s passes through the
// strict interior of the polygon. Segments running along the boundary or
// touching it only at points do not count.
func (p Polygon) SegmentCrossesInterior(s Segment, eps float64) bool {
	ts := []float64{0, 1}
	for i := range p {
		kind, pts := Intersect(s, p.Edge(i), eps)
		if kind == NoIntersection {
			continue
		}
		for _, q := range pts {
			ts = append(ts, math.Max(0, math.Min(1, s.Param(q))))
		}
	}
	sort.Float64s(ts)

	l := s.Len()
	for i := 0; i+1 < len(ts); i++ {
		if (ts[i+1]-ts[i])*l <= eps {
			continue
		}
		if p.StrictlyContains(s.At((ts[i]+ts[i+1])/2), eps) {
			return true
		}
	}
	return false
}

// Overlaps reports whether two polygons share interior area. Touching along
// edges or at vertices is not an overlap.
func Overlaps(a, b Polygon, eps float64) bool {
	for _, v := range a {
		if b.StrictlyContains(v, eps) {
			return true
		}
	}
	for _, v := range b {
		if a.StrictlyContains(v, eps) {
			return true
		}
	}
	if c := a.Centroid(); a.StrictlyContains(c, eps) && b.StrictlyContains(c, eps) {
		return true
	}
	if c := b.Centroid(); b.StrictlyContains(c, eps) && a.StrictlyContains(c, eps) {
		return true
	}
	for i := range a {
		if b.SegmentCrossesInterior(a.Edge(i), eps) {
			return true
		}
	}
	return false
}
