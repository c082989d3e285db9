package mesh

import (
	"errors"
	"fmt"
	"sort"

	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/logging"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// MeshBuildError reports a crease pattern that is not a valid planar
// subdivision. No model is produced.
type MeshBuildError struct {
	Reason string
	Edge   int // offending edge in the input graph, or -1
	Vertex int // offending vertex, or -1
}

func (e *MeshBuildError) Error() string {
	switch {
	case e.Edge >= 0:
		return fmt.Sprintf("mesh build: %s (edge %d)", e.Reason, e.Edge)
	case e.Vertex >= 0:
		return fmt.Sprintf("mesh build: %s (vertex %d)", e.Reason, e.Vertex)
	}
	return "mesh build: " + e.Reason
}

// IsMeshBuildError reports whether err wraps a MeshBuildError.
func IsMeshBuildError(err error) bool {
	var mbe *MeshBuildError
	return errors.As(err, &mbe)
}

// Build splits a crease pattern into its connected pieces and builds one
// model per piece. Auxiliary lines are ignored. Lines must already be
// planar (see Normalize); crossing lines are rejected.
func Build(cp model.CreasePattern, eps float64) ([]*OrigamiModel, error) {
	lines := make([]model.Line, 0, len(cp.Lines))
	for _, l := range cp.Lines {
		if l.Type != model.LineAuxiliary {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, &MeshBuildError{Reason: "crease pattern has no lines", Edge: -1, Vertex: -1}
	}

	var models []*OrigamiModel
	for _, group := range components(lines, eps) {
		m, err := BuildModel(group, eps)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	logging.Logger().Debug("mesh built", "lines", len(lines), "models", len(models))
	return models, nil
}

// components groups lines that share endpoints (within eps). Groups are
// ordered by their first line in input order.
func components(lines []model.Line, eps float64) [][]model.Line {
	points := newPointSet(eps)
	ends := make([][2]int, len(lines))
	for i, l := range lines {
		ends[i] = [2]int{points.add(geom.FromPoint(l.P0)), points.add(geom.FromPoint(l.P1))}
	}

	parent := make([]int, len(points.pts))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, en := range ends {
		a, b := find(en[0]), find(en[1])
		if a != b {
			if a < b {
				parent[b] = a
			} else {
				parent[a] = b
			}
		}
	}

	groupOf := make(map[int]int)
	var groups [][]model.Line
	for i, l := range lines {
		root := find(ends[i][0])
		g, ok := groupOf[root]
		if !ok {
			g = len(groups)
			groupOf[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], l)
	}
	return groups
}

// BuildModel builds the half-edge mesh of one connected set of lines.
// Vertex, edge and face indices follow input order, so building the same
// lines twice yields identical models.
func BuildModel(lines []model.Line, eps float64) (*OrigamiModel, error) {
	points := newPointSet(eps)
	var ends [][2]int
	var types []model.LineType
	seen := make(map[[2]int]bool)
	for _, l := range lines {
		if l.Type == model.LineAuxiliary {
			continue
		}
		a := points.add(geom.FromPoint(l.P0))
		b := points.add(geom.FromPoint(l.P1))
		if a == b {
			continue
		}
		key := [2]int{min(a, b), max(a, b)}
		if seen[key] {
			continue
		}
		seen[key] = true
		ends = append(ends, [2]int{a, b})
		types = append(types, l.Type)
	}
	if len(ends) == 0 {
		return nil, &MeshBuildError{Reason: "no usable lines", Edge: -1, Vertex: -1}
	}

	if err := checkPlanar(points.pts, ends, eps); err != nil {
		return nil, err
	}

	g := newPlanarGraph(points.pts, ends)
	cycles, stuck, ok := g.traceCycles(2*len(ends) + 1)
	if !ok {
		return nil, &MeshBuildError{Reason: "face walk did not close", Edge: dartEdge(stuck), Vertex: -1}
	}

	m := &OrigamiModel{
		Vertices: make([]Vertex, len(points.pts)),
		Edges:    make([]Edge, len(ends)),
	}
	for i, p := range points.pts {
		m.Vertices[i] = Vertex{ID: i, PrePosition: p, Position: p, Edges: append([]int(nil), g.around[i]...)}
	}
	for i, en := range ends {
		m.Edges[i] = Edge{ID: i, V0: en[0], V1: en[1], Type: types[i], Left: -1, Right: -1}
	}

	for _, cycle := range cycles {
		if g.cyclePolygon(cycle).SignedArea() <= eps*eps {
			// outer boundary or a degenerate sliver
			continue
		}
		f := len(m.Faces)
		face := Face{ID: f, Front: true, Halfedges: make([]int, len(cycle))}
		base := len(m.Halfedges)
		for k, d := range cycle {
			h := base + k
			e := dartEdge(d)
			m.Halfedges = append(m.Halfedges, Halfedge{
				ID:     h,
				Vertex: g.dartOrigin(d),
				Edge:   e,
				Face:   f,
				Next:   base + (k+1)%len(cycle),
				Prev:   base + (k-1+len(cycle))%len(cycle),
			})
			if d%2 == 0 {
				m.Edges[e].Left = h
			} else {
				m.Edges[e].Right = h
			}
			face.Halfedges[k] = h
		}
		m.Faces = append(m.Faces, face)
	}

	if len(m.Faces) == 0 {
		return nil, &MeshBuildError{Reason: "lines enclose no face", Edge: -1, Vertex: -1}
	}

	for i := range m.Edges {
		e := &m.Edges[i]
		if e.Left < 0 && e.Right < 0 {
			return nil, &MeshBuildError{Reason: "edge bounds no face", Edge: i, Vertex: -1}
		}
		if e.Type.IsFold() && (e.Left < 0 || e.Right < 0) {
			logging.Logger().Debug("crease on the paper boundary treated as cut", "edge", i)
			e.Type = model.LineCut
		}
	}

	v, ed, f := m.Stats()
	logging.Logger().Debug("model built", "vertices", v, "edges", ed, "faces", f)
	return m, nil
}

// checkPlanar rejects edges that cross or overlap without sharing a vertex.
func checkPlanar(pts []geom.Vec, ends [][2]int, eps float64) error {
	segs := make([]geom.Segment, len(ends))
	for i, en := range ends {
		segs[i] = geom.Seg(pts[en[0]], pts[en[1]])
	}
	order := make([]int, len(segs))
	for i := range order {
		order[i] = i
	}
	minX := func(s geom.Segment) float64 { return min(s.P0.X, s.P1.X) }
	maxX := func(s geom.Segment) float64 { return max(s.P0.X, s.P1.X) }
	sort.Slice(order, func(a, b int) bool { return minX(segs[order[a]]) < minX(segs[order[b]]) })

	for a := 0; a < len(order); a++ {
		i := order[a]
		for b := a + 1; b < len(order); b++ {
			j := order[b]
			if minX(segs[j]) > maxX(segs[i])+eps {
				break
			}
			kind, pts := geom.Intersect(segs[i], segs[j], eps)
			switch kind {
			case geom.OverlapIntersection:
				return &MeshBuildError{Reason: "overlapping lines", Edge: j, Vertex: -1}
			case geom.PointIntersection:
				if !sharesEndpoint(pts[0], segs[i], segs[j], eps) {
					return &MeshBuildError{Reason: "lines cross without a shared vertex", Edge: j, Vertex: -1}
				}
			}
		}
	}
	return nil
}

func sharesEndpoint(p geom.Vec, a, b geom.Segment, eps float64) bool {
	onA := p.Equal(a.P0, eps) || p.Equal(a.P1, eps)
	onB := p.Equal(b.P0, eps) || p.Equal(b.P1, eps)
	return onA && onB
}
