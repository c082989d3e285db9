package layer

import (
	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/model"
	"github.com/piwi3910/CreaseStack/internal/subface"
)

// Reader exposes face pair orders.
type Reader interface {
	Get(i, j int) Order
}

// Condition is a local stacking constraint over a few face pairs. Holds is
// only meaningful once every pair it reads has an Upper or Lower value.
type Condition interface {
	Pairs() []Pair
	Holds(r Reader) bool
}

// Transitive forbids a cycle among three faces that cover a common region.
type Transitive struct {
	A, B, C int
}

func (t Transitive) Pairs() []Pair {
	return []Pair{NewPair(t.A, t.B), NewPair(t.B, t.C), NewPair(t.A, t.C)}
}

func (t Transitive) Holds(r Reader) bool {
	x, y, z := r.Get(t.A, t.B), r.Get(t.B, t.C), r.Get(t.C, t.A)
	cyclic := x == y && y == z && (x == Upper || x == Lower)
	return !cyclic
}

// Cond3 says face Face, whose folded outline is pierced by the crease joining
// Upper and Lower, cannot lie between them.
type Cond3 struct {
	Upper, Lower, Face int
}

func (c Cond3) Pairs() []Pair {
	return []Pair{NewPair(c.Upper, c.Face), NewPair(c.Lower, c.Face)}
}

func (c Cond3) Holds(r Reader) bool {
	return r.Get(c.Upper, c.Face) == r.Get(c.Lower, c.Face)
}

// Cond4 says two creases folded onto the same line cannot interleave: either
// both faces of one crease lie between the faces of the other, or neither.
type Cond4 struct {
	Upper1, Lower1 int
	Upper2, Lower2 int
}

func (c Cond4) Pairs() []Pair {
	return []Pair{
		NewPair(c.Upper1, c.Upper2),
		NewPair(c.Upper1, c.Lower2),
		NewPair(c.Lower1, c.Upper2),
		NewPair(c.Lower1, c.Lower2),
	}
}

func (c Cond4) Holds(r Reader) bool {
	between := func(x, u, l int) bool {
		return r.Get(u, x) == Upper && r.Get(x, l) == Upper
	}
	return between(c.Upper2, c.Upper1, c.Lower1) == between(c.Lower2, c.Upper1, c.Lower1) &&
		between(c.Upper1, c.Upper2, c.Lower2) == between(c.Lower1, c.Upper2, c.Lower2)
}

// crease is a fold edge with its faces ordered by the seed rule.
type crease struct {
	edge         int
	upper, lower int
	folded       geom.Segment
}

// creaseOrder decides which face of a crease ends up on top. Seen from above,
// a mountain fold sends the neighbour behind a face showing its front, and a
// valley fold brings it in front.
func creaseOrder(m *mesh.OrigamiModel, e int) (upper, lower int, ok bool) {
	left, right := m.EdgeFaces(e)
	if left < 0 || right < 0 || !m.Edges[e].Type.IsFold() {
		return -1, -1, false
	}
	front := m.Faces[left].Front
	typ := m.Edges[e].Type
	if (front && typ == model.LineMountain) || (!front && typ == model.LineValley) {
		return left, right, true
	}
	return right, left, true
}

func creases(m *mesh.OrigamiModel) []crease {
	var out []crease
	for e := range m.Edges {
		u, l, ok := creaseOrder(m, e)
		if !ok {
			continue
		}
		out = append(out, crease{edge: e, upper: u, lower: l, folded: m.FoldedEdgeSegment(e)})
	}
	return out
}

// SeedRelation marks every overlapping pair as Undefined and fixes the pairs
// joined by a crease. It reports false when two creases demand opposite
// orders for the same pair.
func SeedRelation(m *mesh.OrigamiModel, sub *subface.Result) (*Relation, bool) {
	n := len(m.Faces)
	r := NewRelation(n)
	for i := range n {
		for j := i + 1; j < n; j++ {
			if sub.Overlap(i, j) {
				r.Set(i, j, Undefined)
			}
		}
	}
	for _, s := range sub.SubFaces {
		for a, i := range s.Parents {
			for _, j := range s.Parents[a+1:] {
				if r.Get(i, j) == NoOverlap {
					r.Set(i, j, Undefined)
				}
			}
		}
	}
	for _, c := range creases(m) {
		if r.Get(c.upper, c.lower) == NoOverlap {
			r.Set(c.upper, c.lower, Undefined)
		}
		if _, ok := r.Fix(c.upper, c.lower, Upper); !ok {
			return r, false
		}
	}
	return r, true
}

// BuildConditions derives the stacking constraints of a folded model:
// transitivity inside every subface, the three-face crease condition and the
// four-face collinear crease condition.
func BuildConditions(m *mesh.OrigamiModel, sub *subface.Result, eps float64) []Condition {
	var conds []Condition

	seen := make(map[[3]int]bool)
	for _, s := range sub.SubFaces {
		ps := s.Parents
		for a := 0; a < len(ps); a++ {
			for b := a + 1; b < len(ps); b++ {
				for c := b + 1; c < len(ps); c++ {
					key := [3]int{ps[a], ps[b], ps[c]}
					if seen[key] {
						continue
					}
					seen[key] = true
					conds = append(conds, Transitive{A: ps[a], B: ps[b], C: ps[c]})
				}
			}
		}
	}

	polys := make([]geom.Polygon, len(m.Faces))
	for f := range m.Faces {
		polys[f] = m.FoldedPolygon(f)
	}

	cs := creases(m)
	for _, c := range cs {
		for k := range m.Faces {
			if k == c.upper || k == c.lower {
				continue
			}
			if !sub.Overlap(k, c.upper) || !sub.Overlap(k, c.lower) {
				continue
			}
			if polys[k].SegmentCrossesInterior(c.folded, eps) {
				conds = append(conds, Cond3{Upper: c.upper, Lower: c.lower, Face: k})
			}
		}
	}

	for a := range cs {
		for b := a + 1; b < len(cs); b++ {
			c1, c2 := cs[a], cs[b]
			if !distinct(c1.upper, c1.lower, c2.upper, c2.lower) {
				continue
			}
			if !sharesStretch(c1.folded, c2.folded, eps) {
				continue
			}
			if !sub.Overlap(c1.upper, c2.upper) || !sub.Overlap(c1.upper, c2.lower) ||
				!sub.Overlap(c1.lower, c2.upper) || !sub.Overlap(c1.lower, c2.lower) {
				continue
			}
			conds = append(conds, Cond4{
				Upper1: c1.upper, Lower1: c1.lower,
				Upper2: c2.upper, Lower2: c2.lower,
			})
		}
	}
	return conds
}

// sharesStretch reports whether two folded creases run along the same line
// for a positive length.
func sharesStretch(a, b geom.Segment, eps float64) bool {
	kind, pts := geom.Intersect(a, b, eps)
	return kind == geom.OverlapIntersection && pts[0].Dist(pts[1]) > eps
}

func distinct(a, b, c, d int) bool {
	return a != b && a != c && a != d && b != c && b != d && c != d
}
