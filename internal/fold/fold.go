// Package fold computes the flat-folded placement of an OrigamiModel: which
// side of each face faces up and where every vertex lands.
package fold

import (
	"errors"
	"fmt"

	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/logging"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// ErrInconsistentFold means some vertex lands in two different places
// depending on the path used to reach it, so the pattern cannot fold flat.
var ErrInconsistentFold = errors.New("crease pattern does not fold consistently")

// affine maps p to (A·x + B·y + TX, C·x + D·y + TY).
type affine struct {
	A, B, C, D, TX, TY float64
}

var identity = affine{A: 1, D: 1}

func (t affine) apply(p geom.Vec) geom.Vec {
	return geom.Vec{X: t.A*p.X + t.B*p.Y + t.TX, Y: t.C*p.X + t.D*p.Y + t.TY}
}

// then returns the transform applying u first and t second.
func (t affine) then(u affine) affine {
	return affine{
		A:  t.A*u.A + t.B*u.C,
		B:  t.A*u.B + t.B*u.D,
		C:  t.C*u.A + t.D*u.C,
		D:  t.C*u.B + t.D*u.D,
		TX: t.A*u.TX + t.B*u.TY + t.TX,
		TY: t.C*u.TX + t.D*u.TY + t.TY,
	}
}

func (t affine) det() float64 { return t.A*t.D - t.B*t.C }

// reflection mirrors across the line through a and b.
func reflection(a, b geom.Vec) affine {
	d := b.Sub(a).Unit()
	// R = 2·d·dᵀ − I, translated so the line through a is fixed
	r := affine{
		A: 2*d.X*d.X - 1,
		B: 2 * d.X * d.Y,
		C: 2 * d.X * d.Y,
		D: 2*d.Y*d.Y - 1,
	}
	ra := r.apply(a)
	r.TX = a.X - ra.X
	r.TY = a.Y - ra.Y
	return r
}

// Apply folds every crease of m, starting from face 0 which stays in place
// with its front up. Face.Front and Vertex.Position are set and m.Folded is
// marked. A vertex that would land in two places yields ErrInconsistentFold;
// the model then keeps the first placement found for each vertex.
func Apply(m *mesh.OrigamiModel, eps float64) error {
	transforms := faceTransforms(m)
	return place(m, transforms, eps, true)
}

// ApplyWithoutLineType places the faces by folding every crease regardless
// of its mountain/valley assignment and never fails. It is used to show the
// folded shape of patterns that did not pass the local checks.
func ApplyWithoutLineType(m *mesh.OrigamiModel) {
	transforms := faceTransforms(m)
	_ = place(m, transforms, 0, false)
}

// faceTransforms walks faces breadth-first from face 0. Crossing a crease
// composes a reflection across it; crossing an interior cut keeps the
// transform.
func faceTransforms(m *mesh.OrigamiModel) []affine {
	n := len(m.Faces)
	transforms := make([]affine, n)
	visited := make([]bool, n)
	if n == 0 {
		return transforms
	}

	for root := 0; root < n; root++ {
		if visited[root] {
			continue
		}
		transforms[root] = identity
		visited[root] = true
		queue := []int{root}
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			for _, h := range m.Faces[f].Halfedges {
				tw := m.Twin(h)
				if tw < 0 {
					continue
				}
				g := m.Halfedges[tw].Face
				if visited[g] {
					continue
				}
				e := m.Edges[m.Halfedges[h].Edge]
				t := transforms[f]
				if e.Type.IsFold() {
					seg := m.EdgeSegment(m.Halfedges[h].Edge)
					t = t.then(reflection(seg.P0, seg.P1))
				}
				transforms[g] = t
				visited[g] = true
				queue = append(queue, g)
			}
		}
	}
	return transforms
}

func place(m *mesh.OrigamiModel, transforms []affine, eps float64, strict bool) error {
	placed := make([]bool, len(m.Vertices))
	var firstErr error
	for f := range m.Faces {
		t := transforms[f]
		m.Faces[f].Front = t.det() > 0
		for _, h := range m.Faces[f].Halfedges {
			v := m.Halfedges[h].Vertex
			p := t.apply(m.Vertices[v].PrePosition)
			if !placed[v] {
				m.Vertices[v].Position = p
				placed[v] = true
				continue
			}
			if strict && firstErr == nil && !p.Equal(m.Vertices[v].Position, eps) {
				firstErr = fmt.Errorf("vertex %d: %w", v, ErrInconsistentFold)
			}
		}
	}
	m.Folded = true

	if firstErr != nil {
		logging.Logger().Debug("fold inconsistent", "error", firstErr)
		return firstErr
	}
	return nil
}

// CreaseCount returns how many mountain and valley edges the model has.
func CreaseCount(m *mesh.OrigamiModel) (mountains, valleys int) {
	for _, e := range m.Edges {
		switch e.Type {
		case model.LineMountain:
			mountains++
		case model.LineValley:
			valleys++
		}
	}
	return mountains, valleys
}
