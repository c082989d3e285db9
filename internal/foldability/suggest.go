package foldability

import (
	"math"

	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// SuggestMaekawa returns the crease type that, added at interior vertex v,
// would make the mountain and valley counts differ by two. ok is false when
// v is on the boundary, has an even degree, or no single crease can help.
func SuggestMaekawa(m *mesh.OrigamiModel, v int) (t model.LineType, ok bool) {
	if m.IsBoundaryVertex(v) || len(m.Vertices[v].Edges)%2 == 0 {
		return 0, false
	}
	mc, vc := countTypes(m, m.Vertices[v].Edges)
	switch mc - vc {
	case 1, -3:
		return model.LineMountain, true
	case -1, 3:
		return model.LineValley, true
	}
	return 0, false
}

// Suggestion is a candidate crease leaving a vertex.
type Suggestion struct {
	Angle float64        `json:"angle"` // direction in radians, [0, 2π)
	Type  model.LineType `json:"type"`
}

// SuggestKawasaki lists the directions in which one extra crease at an
// odd-degree interior vertex would make the alternate sector angles sum to
// π. Each candidate splits an existing sector; the crease type comes from
// SuggestMaekawa, and no candidates are returned when it has none.
func SuggestKawasaki(m *mesh.OrigamiModel, v int, angleEps float64) []Suggestion {
	t, ok := SuggestMaekawa(m, v)
	if !ok {
		return nil
	}
	angles := SectorAngles(m, v)
	n := len(angles)
	edges := m.Vertices[v].Edges
	origin := m.Vertices[v].PrePosition

	var out []Suggestion
	for i := range n {
		// sums of even sectors before i and odd sectors after i, whose parity
		// is unchanged or flipped onto the even side by the inserted crease
		var evenBefore, oddAfter float64
		for j := 0; j < i; j += 2 {
			evenBefore += angles[j]
		}
		for j := i + 1; j < n; j++ {
			if j%2 == 1 {
				oddAfter += angles[j]
			}
		}

		var a float64
		if i%2 == 0 {
			a = math.Pi - evenBefore - oddAfter
		} else {
			a = evenBefore + angles[i] + oddAfter - math.Pi
		}
		if a <= angleEps || a >= angles[i]-angleEps {
			continue
		}
		base := m.Vertices[m.OtherVertex(edges[i], v)].PrePosition.Sub(origin).Angle()
		out = append(out, Suggestion{Angle: geom.NormalizeAngle(base + a), Type: t})
	}
	return out
}
