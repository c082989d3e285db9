package mesh

import (
	"math"
	"sort"

	"github.com/piwi3910/CreaseStack/internal/geom"
)

// pointSet merges points that lie within eps of each other. Indices are
// assigned in first-seen order.
type pointSet struct {
	eps   float64
	cell  float64
	cells map[[2]int64][]int
	pts   []geom.Vec
}

func newPointSet(eps float64) *pointSet {
	cell := eps
	if cell <= 0 {
		cell = 1e-12
	}
	return &pointSet{eps: eps, cell: cell, cells: make(map[[2]int64][]int)}
}

func (s *pointSet) key(p geom.Vec) [2]int64 {
	return [2]int64{int64(math.Floor(p.X / s.cell)), int64(math.Floor(p.Y / s.cell))}
}

// find returns the index of a stored point within eps of p, or -1.
func (s *pointSet) find(p geom.Vec) int {
	k := s.key(p)
	best, bestD := -1, math.Inf(1)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, i := range s.cells[[2]int64{k[0] + dx, k[1] + dy}] {
				if d := s.pts[i].Dist(p); d <= s.eps && d < bestD {
					best, bestD = i, d
				}
			}
		}
	}
	return best
}

// add returns the index of p, inserting it when no stored point is close.
func (s *pointSet) add(p geom.Vec) int {
	if i := s.find(p); i >= 0 {
		return i
	}
	i := len(s.pts)
	s.pts = append(s.pts, p)
	k := s.key(p)
	s.cells[k] = append(s.cells[k], i)
	return i
}

// planarGraph is a straight-line embedding used to trace faces. Darts are
// numbered 2*edge for ends[0]→ends[1] and 2*edge+1 for the reverse.
type planarGraph struct {
	pos    []geom.Vec
	ends   [][2]int
	around [][]int  // incident edges per vertex, counter-clockwise
	slot   [][2]int // slot[e][k]: index of e in around[ends[e][k]]
}

func newPlanarGraph(pos []geom.Vec, ends [][2]int) *planarGraph {
	g := &planarGraph{
		pos:    pos,
		ends:   ends,
		around: make([][]int, len(pos)),
		slot:   make([][2]int, len(ends)),
	}
	for e, en := range ends {
		g.around[en[0]] = append(g.around[en[0]], e)
		g.around[en[1]] = append(g.around[en[1]], e)
	}
	for v, es := range g.around {
		sort.SliceStable(es, func(i, j int) bool {
			return g.edgeAngle(es[i], v) < g.edgeAngle(es[j], v)
		})
		for k, e := range es {
			if ends[e][0] == v {
				g.slot[e][0] = k
			} else {
				g.slot[e][1] = k
			}
		}
	}
	return g
}

func (g *planarGraph) other(e, v int) int {
	if g.ends[e][0] == v {
		return g.ends[e][1]
	}
	return g.ends[e][0]
}

// edgeAngle is the direction of edge e leaving v.
func (g *planarGraph) edgeAngle(e, v int) float64 {
	return g.pos[g.other(e, v)].Sub(g.pos[v]).Angle()
}

func dartEdge(d int) int { return d / 2 }

func (g *planarGraph) dartOrigin(d int) int { return g.ends[d/2][d%2] }
func (g *planarGraph) dartTarget(d int) int { return g.ends[d/2][1-d%2] }

// nextDart turns to the clockwise neighbour at the dart's target, which walks
// the face on the dart's left counter-clockwise.
func (g *planarGraph) nextDart(d int) int {
	e := d / 2
	side := 1 - d%2
	v := g.ends[e][side]
	es := g.around[v]
	k := g.slot[e][side]
	ne := es[(k-1+len(es))%len(es)]
	if g.ends[ne][0] == v {
		return 2 * ne
	}
	return 2*ne + 1
}

// traceCycles returns every dart cycle. A cycle longer than limit darts is
// reported through the returned dart.
func (g *planarGraph) traceCycles(limit int) (cycles [][]int, stuck int, ok bool) {
	used := make([]bool, 2*len(g.ends))
	for start := range used {
		if used[start] {
			continue
		}
		var cycle []int
		d := start
		for {
			if len(cycle) > limit {
				return nil, start, false
			}
			used[d] = true
			cycle = append(cycle, d)
			d = g.nextDart(d)
			if d == start {
				break
			}
		}
		cycles = append(cycles, cycle)
	}
	return cycles, -1, true
}

func (g *planarGraph) cyclePolygon(cycle []int) geom.Polygon {
	p := make(geom.Polygon, len(cycle))
	for i, d := range cycle {
		p[i] = g.pos[g.dartOrigin(d)]
	}
	return p
}
