// Package subface finds the regions of a folded model covered by more than
// one face, together with the faces covering each region.
package subface

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/dhconnelly/rtreego"

	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/logging"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/parallel"
)

// SubFace is a region of the folded paper and the faces that cover it.
type SubFace struct {
	ID      int          `json:"id"`
	Outline geom.Polygon `json:"outline"` // folded coordinates, counter-clockwise
	Parents []int        `json:"parents"` // ascending face indices, at least two
}

// HasParent reports whether face f covers the subface.
func (s SubFace) HasParent(f int) bool {
	_, ok := slices.BinarySearch(s.Parents, f)
	return ok
}

// Options configures Analyze.
type Options struct {
	Eps  float64
	Pool *parallel.WorkerPool // nil runs on a private pool of GOMAXPROCS workers
}

// Result holds the pairwise face overlaps and the subfaces of one model.
type Result struct {
	Overlaps [][]bool  `json:"overlaps"` // symmetric, false on the diagonal
	SubFaces []SubFace `json:"subfaces"`
}

// Overlap reports whether faces i and j share area after folding.
func (r *Result) Overlap(i, j int) bool {
	return r.Overlaps[i][j]
}

// OverlapCount returns the number of overlapping unordered face pairs.
func (r *Result) OverlapCount() int {
	n := 0
	for i := range r.Overlaps {
		for j := i + 1; j < len(r.Overlaps); j++ {
			if r.Overlaps[i][j] {
				n++
			}
		}
	}
	return n
}

// Analyze computes the face overlap matrix and the subfaces of a folded model.
func Analyze(ctx context.Context, m *mesh.OrigamiModel, opts Options) (*Result, error) {
	if !m.Folded {
		return nil, errors.New("model has not been folded")
	}
	pool := opts.Pool
	if pool == nil {
		pool = parallel.NewWorkerPool(0)
		defer pool.Close()
	}

	n := len(m.Faces)
	polys := make([]geom.Polygon, n)
	for f := range m.Faces {
		p := m.FoldedPolygon(f)
		if !p.IsCCW() {
			p = p.Reversed()
		}
		polys[f] = p
	}

	overlaps := make([][]bool, n)
	for i := range overlaps {
		overlaps[i] = make([]bool, n)
	}
	boxes := make([]faceBox, n)
	tree := rtreego.NewTree(2, 4, 16)
	for f, p := range polys {
		boxes[f] = newFaceBox(f, p, opts.Eps)
		tree.Insert(boxes[f])
	}
	pool.ForEach(n, func(i int) {
		if ctx.Err() != nil {
			return
		}
		for _, c := range tree.SearchIntersect(boxes[i].rect) {
			if j := c.(faceBox).face; j > i {
				overlaps[i][j] = geom.Overlaps(polys[i], polys[j], opts.Eps)
			}
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to compute face overlaps: %w", err)
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			overlaps[j][i] = overlaps[i][j]
		}
	}

	var segs []geom.Segment
	for e := range m.Edges {
		segs = append(segs, m.FoldedEdgeSegment(e))
	}
	regions := mesh.TraceArrangement(segs, opts.Eps)

	parents := make([][]int, len(regions))
	pool.ForEach(len(regions), func(r int) {
		if ctx.Err() != nil {
			return
		}
		pt, ok := regions[r].InteriorPoint(opts.Eps)
		if !ok {
			return
		}
		for f, p := range polys {
			if p.StrictlyContains(pt, opts.Eps) {
				parents[r] = append(parents[r], f)
			}
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to collect subface parents: %w", err)
	}

	subfaces := maximalSubFaces(regions, parents)
	logging.Logger().Debug("subfaces analysed",
		"faces", n, "regions", len(regions), "subfaces", len(subfaces))
	return &Result{Overlaps: overlaps, SubFaces: subfaces}, nil
}

// maximalSubFaces merges regions with the same parent set, drops parent sets
// contained in another one, and orders the rest by parent list.
func maximalSubFaces(regions []geom.Polygon, parents [][]int) []SubFace {
	byKey := make(map[string]int)
	var out []SubFace
	for r, ps := range parents {
		if len(ps) < 2 {
			continue
		}
		key := fmt.Sprint(ps)
		if k, ok := byKey[key]; ok {
			if regions[r].Area() > out[k].Outline.Area() {
				out[k].Outline = regions[r]
			}
			continue
		}
		byKey[key] = len(out)
		out = append(out, SubFace{Outline: regions[r], Parents: ps})
	}

	var kept []SubFace
	for i, s := range out {
		covered := false
		for j, o := range out {
			if i != j && len(o.Parents) > len(s.Parents) && isSubset(s.Parents, o.Parents) {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, s)
		}
	}

	sort.Slice(kept, func(a, b int) bool {
		return slices.Compare(kept[a].Parents, kept[b].Parents) < 0
	})
	for i := range kept {
		kept[i].ID = i
	}
	return kept
}

// isSubset reports whether sorted a is contained in sorted b.
func isSubset(a, b []int) bool {
	j := 0
	for _, x := range a {
		for j < len(b) && b[j] < x {
			j++
		}
		if j == len(b) || b[j] != x {
			return false
		}
	}
	return true
}

// faceBox indexes a folded face by its bounding box, padded by eps so that
// degenerate extents stay valid.
type faceBox struct {
	face int
	rect rtreego.Rect
}

func newFaceBox(f int, p geom.Polygon, eps float64) faceBox {
	lo, hi := p.Outline().BoundingBox()
	pad := max(eps, 1e-12)
	rect, err := rtreego.NewRect(
		rtreego.Point{lo.X - pad, lo.Y - pad},
		[]float64{hi.X - lo.X + 2*pad, hi.Y - lo.Y + 2*pad},
	)
	if err != nil {
		// lengths are positive by construction
		panic(err)
	}
	return faceBox{face: f, rect: rect}
}

func (b faceBox) Bounds() rtreego.Rect { return b.rect }
