// Package foldability holds the per-vertex necessary conditions for flat
// foldability. Passing them does not guarantee a valid layer order.
package foldability

import (
	"math"

	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// Rule is a local condition evaluated at one interior vertex.
type Rule interface {
	Name() string
	Holds(m *mesh.OrigamiModel, v int, angleEps float64) bool
}

// SectorAngles returns the angle between incident edge i and edge i+1
// (counter-clockwise, cyclic) around vertex v.
func SectorAngles(m *mesh.OrigamiModel, v int) []float64 {
	edges := m.Vertices[v].Edges
	n := len(edges)
	if n == 0 {
		return nil
	}
	dirs := make([]float64, n)
	origin := m.Vertices[v].PrePosition
	for i, e := range edges {
		dirs[i] = m.Vertices[m.OtherVertex(e, v)].PrePosition.Sub(origin).Angle()
	}
	angles := make([]float64, n)
	for i := range edges {
		if n == 1 {
			angles[i] = 2 * math.Pi
			break
		}
		angles[i] = geom.NormalizeAngle(dirs[(i+1)%n] - dirs[i])
	}
	return angles
}

func countTypes(m *mesh.OrigamiModel, edges []int) (mountains, valleys int) {
	for _, e := range edges {
		switch m.Edges[e].Type {
		case model.LineMountain:
			mountains++
		case model.LineValley:
			valleys++
		}
	}
	return mountains, valleys
}

// Maekawa requires the mountain and valley counts to differ by exactly two.
type Maekawa struct{}

func (Maekawa) Name() string { return "maekawa" }

func (Maekawa) Holds(m *mesh.OrigamiModel, v int, _ float64) bool {
	mc, vc := countTypes(m, m.Vertices[v].Edges)
	return abs(mc-vc) == 2
}

// Kawasaki requires an even degree and alternate sector angles summing to π.
type Kawasaki struct{}

func (Kawasaki) Name() string { return "kawasaki" }

func (Kawasaki) Holds(m *mesh.OrigamiModel, v int, angleEps float64) bool {
	angles := SectorAngles(m, v)
	if len(angles)%2 != 0 {
		return false
	}
	var even float64
	for i := 0; i < len(angles); i += 2 {
		even += angles[i]
	}
	return math.Abs(even-math.Pi) <= angleEps*float64(len(angles))
}

// BigLittleBig checks every run of equal sectors that is a strict local
// minimum of the angle sequence. The creases bounding and inside such a run
// must balance: equal mountain and valley counts for an even number of
// creases, a difference of one for an odd number.
type BigLittleBig struct{}

func (BigLittleBig) Name() string { return "big-little-big" }

func (BigLittleBig) Holds(m *mesh.OrigamiModel, v int, angleEps float64) bool {
	edges := m.Vertices[v].Edges
	for _, r := range MinimalAngleRanges(SectorAngles(m, v), angleEps) {
		rangeEdges := make([]int, r.Count)
		for k := range r.Count {
			rangeEdges[k] = edges[(r.First+k)%len(edges)]
		}
		mc, vc := countTypes(m, rangeEdges)
		if r.Count%2 == 0 && mc != vc {
			return false
		}
		if r.Count%2 == 1 && abs(mc-vc) != 1 {
			return false
		}
	}
	return true
}

// EdgeRange is a cyclic run of Count consecutive incident edges starting at First.
type EdgeRange struct {
	First int
	Count int
}

// MinimalAngleRanges finds every maximal run of equal sectors whose
// neighbouring sectors on both sides are strictly larger. Sector i lies
// between edges i and i+1, so a run of k sectors spans k+1 edges.
// A sequence of all-equal sectors has no such run.
func MinimalAngleRanges(angles []float64, eps float64) []EdgeRange {
	n := len(angles)
	if n < 2 {
		return nil
	}
	eq := func(a, b float64) bool { return math.Abs(a-b) <= eps }
	at := func(i int) float64 { return angles[((i%n)+n)%n] }

	allEqual := true
	for i := 1; i < n; i++ {
		if !eq(angles[i], angles[0]) {
			allEqual = false
			break
		}
	}
	if allEqual {
		return nil
	}

	var ranges []EdgeRange
	for end := 0; end < n; end++ {
		// the run ends at sector end-1 and is followed by a strict increase
		low := at(end - 1)
		if at(end)-low <= eps {
			continue
		}
		start := end - 1
		for eq(at(start-1), low) {
			start--
		}
		if at(start-1)-low > eps {
			ranges = append(ranges, EdgeRange{
				First: ((start % n) + n) % n,
				Count: end - start + 1,
			})
		}
	}
	return ranges
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
