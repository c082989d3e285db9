package geom

import "math"

// Segment is a closed line segment.
type Segment struct {
	P0 Vec `json:"p0"`
	P1 Vec `json:"p1"`
}

func Seg(a, b Vec) Segment { return Segment{P0: a, P1: b} }

func (s Segment) Len() float64 { return s.P0.Dist(s.P1) }
func (s Segment) Dir() Vec { return s.P1.Sub(s.P0) }

// At returns the point at parameter t along the segment.
func (s Segment) At(t float64) Vec { return s.P0.Lerp(s.P1, t) }

// Param returns the parameter of the projection of p onto the segment's line.
func (s Segment) Param(p Vec) float64 {
	d := s.Dir()
	l2 := d.Dot(d)
	if l2 == 0 {
		return 0
	}
	return p.Sub(s.P0).Dot(d) / l2
}

// Distance returns the distance from p to the closest point of the segment.
func (s Segment) Distance(p Vec) float64 {
	t := math.Max(0, math.Min(1, s.Param(p)))
	return p.Dist(s.At(t))
}

// Contains reports whether p lies on the segment within eps.
func (s Segment) Contains(p Vec, eps float64) bool {
	return s.Distance(p) <= eps
}

// LineDistance returns the distance from p to the infinite line through the segment.
func (s Segment) LineDistance(p Vec) float64 {
	l := s.Len()
	if l == 0 {
		return p.Dist(s.P0)
	}
	return math.Abs(s.Dir().Cross(p.Sub(s.P0))) / l
}

// Collinear reports whether both endpoints of o lie on the line of s within eps.
func (s Segment) Collinear(o Segment, eps float64) bool {
	return s.LineDistance(o.P0) <= eps && s.LineDistance(o.P1) <= eps
}

// IntersectionKind classifies the result of Intersect.
type IntersectionKind int

const (
	NoIntersection IntersectionKind = iota
	PointIntersection
	OverlapIntersection
)

// Intersect returns the common points of two segments. A single crossing or
// touching point yields PointIntersection with one point; collinear segments
// sharing a stretch of positive length yield OverlapIntersection with the two
// ends of the shared stretch.
func Intersect(a, b Segment, eps float64) (IntersectionKind, []Vec) {
	if a.Collinear(b, eps) {
		return collinearIntersect(a, b, eps)
	}

	// Endpoint contacts are resolved with the tolerance first so that
	// T-junctions snap to the existing endpoint.
	for _, p := range []Vec{a.P0, a.P1} {
		if b.Contains(p, eps) {
			return PointIntersection, []Vec{p}
		}
	}
	for _, p := range []Vec{b.P0, b.P1} {
		if a.Contains(p, eps) {
			return PointIntersection, []Vec{p}
		}
	}

	d1 := a.Dir()
	d2 := b.Dir()
	den := d1.Cross(d2)
	if den == 0 {
		return NoIntersection, nil
	}
	w := b.P0.Sub(a.P0)
	t := w.Cross(d2) / den
	u := w.Cross(d1) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return NoIntersection, nil
	}
	return PointIntersection, []Vec{a.At(t)}
}

func collinearIntersect(a, b Segment, eps float64) (IntersectionKind, []Vec) {
	l := a.Len()
	if l == 0 {
		if b.Contains(a.P0, eps) {
			return PointIntersection, []Vec{a.P0}
		}
		return NoIntersection, nil
	}
	t0 := a.Param(b.P0)
	t1 := a.Param(b.P1)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	lo := math.Max(0, t0)
	hi := math.Min(1, t1)
	tol := eps / l
	switch {
	case hi < lo-tol:
		return NoIntersection, nil
	case hi-lo <= tol:
		return PointIntersection, []Vec{a.At((lo + hi) / 2)}
	}
	return OverlapIntersection, []Vec{a.At(lo), a.At(hi)}
}

// Crosses reports whether the segments cross at a single point interior to both.
func Crosses(a, b Segment, eps float64) bool {
	kind, pts := Intersect(a, b, eps)
	if kind != PointIntersection {
		return false
	}
	p := pts[0]
	return !p.Equal(a.P0, eps) && !p.Equal(a.P1, eps) && !p.Equal(b.P0, eps) && !p.Equal(b.P1, eps)
}
