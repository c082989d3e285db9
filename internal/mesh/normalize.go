package mesh

import (
	"sort"

	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// Normalize makes a line set planar: lines are split where they cross or
// touch, and zero-length and duplicated pieces are dropped. When two pieces
// coincide, a Cut wins over a crease and a crease wins over an auxiliary
// line; otherwise the first one seen is kept. Output order follows the input.
func Normalize(lines []model.Line, eps float64) []model.Line {
	segs := make([]geom.Segment, len(lines))
	for i, l := range lines {
		segs[i] = geom.Seg(geom.FromPoint(l.P0), geom.FromPoint(l.P1))
	}

	cuts := splitParams(segs, eps)

	type piece struct {
		line model.Line
		seg  geom.Segment
	}
	var pieces []piece
	for i, l := range lines {
		s := segs[i]
		if s.Len() <= eps {
			continue
		}
		ts := cuts[i]
		if len(ts) == 2 {
			pieces = append(pieces, piece{line: l, seg: s})
			continue
		}
		for k := 0; k+1 < len(ts); k++ {
			a, b := s.At(ts[k]), s.At(ts[k+1])
			if a.Dist(b) <= eps {
				continue
			}
			pieces = append(pieces, piece{
				line: model.NewLine(a.X, a.Y, b.X, b.Y, l.Type),
				seg:  geom.Seg(a, b),
			})
		}
	}

	points := newPointSet(eps)
	index := make(map[[2]int]int)
	var out []model.Line
	for _, p := range pieces {
		a, b := points.add(p.seg.P0), points.add(p.seg.P1)
		if a == b {
			continue
		}
		key := [2]int{a, b}
		if a > b {
			key = [2]int{b, a}
		}
		if k, ok := index[key]; ok {
			if linePriority(p.line.Type) > linePriority(out[k].Type) {
				out[k].Type = p.line.Type
			}
			continue
		}
		index[key] = len(out)
		out = append(out, p.line)
	}
	return out
}

func linePriority(t model.LineType) int {
	switch t {
	case model.LineCut:
		return 2
	case model.LineMountain, model.LineValley:
		return 1
	}
	return 0
}

// splitParams returns, per segment, the sorted parameters at which it meets
// any other segment, always including 0 and 1.
func splitParams(segs []geom.Segment, eps float64) [][]float64 {
	cuts := make([][]float64, len(segs))
	for i := range segs {
		cuts[i] = []float64{0, 1}
	}
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			kind, pts := geom.Intersect(segs[i], segs[j], eps)
			if kind == geom.NoIntersection {
				continue
			}
			for _, p := range pts {
				cuts[i] = append(cuts[i], segs[i].Param(p))
				cuts[j] = append(cuts[j], segs[j].Param(p))
			}
		}
	}
	for i, ts := range cuts {
		cuts[i] = uniqueParams(ts, segs[i].Len(), eps)
	}
	return cuts
}

// uniqueParams clamps to [0, 1], sorts and drops parameters closer than eps
// along a segment of the given length.
func uniqueParams(ts []float64, length, eps float64) []float64 {
	for i, t := range ts {
		if t < 0 {
			ts[i] = 0
		} else if t > 1 {
			ts[i] = 1
		}
	}
	sort.Float64s(ts)
	out := ts[:1]
	for _, t := range ts[1:] {
		if (t-out[len(out)-1])*length > eps {
			out = append(out, t)
		}
	}
	if out[len(out)-1] != 1 {
		if (1-out[len(out)-1])*length <= eps {
			out[len(out)-1] = 1
		} else {
			out = append(out, 1)
		}
	}
	return out
}
