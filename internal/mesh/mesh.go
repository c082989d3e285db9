// Package mesh turns a crease pattern into half-edge face meshes.
//
// All cross references are integer indices into the slices owned by an
// OrigamiModel; -1 marks an absent reference.
package mesh

import (
	"fmt"

	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// Vertex is a crease pattern point.
type Vertex struct {
	ID          int      `json:"id"`
	PrePosition geom.Vec `json:"pre_position"`
	Position    geom.Vec `json:"position"` // after folding
	Edges       []int    `json:"edges"`    // incident edges, counter-clockwise by angle
}

// Edge connects V0 and V1. Left is the half-edge running V0→V1 and Right the
// one running V1→V0; each bounds the face on its left.
type Edge struct {
	ID    int            `json:"id"`
	V0    int            `json:"v0"`
	V1    int            `json:"v1"`
	Type  model.LineType `json:"type"`
	Left  int            `json:"left"`
	Right int            `json:"right"`
}

// Halfedge is one directed side of an edge inside a face loop.
type Halfedge struct {
	ID     int `json:"id"`
	Vertex int `json:"vertex"` // origin
	Edge   int `json:"edge"`
	Face   int `json:"face"`
	Next   int `json:"next"`
	Prev   int `json:"prev"`
}

// Face is a counter-clockwise loop of half-edges on the unfolded paper.
type Face struct {
	ID        int   `json:"id"`
	Halfedges []int `json:"halfedges"`
	Front     bool  `json:"front"` // paper front faces up after folding
}

// OrigamiModel owns the mesh of one connected piece of a crease pattern.
// It is treated as read-only once folding has been applied.
type OrigamiModel struct {
	Vertices  []Vertex   `json:"vertices"`
	Edges     []Edge     `json:"edges"`
	Halfedges []Halfedge `json:"halfedges"`
	Faces     []Face     `json:"faces"`
	Folded    bool       `json:"folded"`
}

// Target returns the vertex a half-edge points to.
func (m *OrigamiModel) Target(h int) int {
	return m.Halfedges[m.Halfedges[h].Next].Vertex
}

// Twin returns the half-edge on the other side of h's edge, or -1.
func (m *OrigamiModel) Twin(h int) int {
	e := m.Edges[m.Halfedges[h].Edge]
	if e.Left == h {
		return e.Right
	}
	return e.Left
}

// OtherVertex returns the endpoint of edge e that is not v.
func (m *OrigamiModel) OtherVertex(e, v int) int {
	if m.Edges[e].V0 == v {
		return m.Edges[e].V1
	}
	return m.Edges[e].V0
}

// FaceVertices returns the vertex loop of face f.
func (m *OrigamiModel) FaceVertices(f int) []int {
	hs := m.Faces[f].Halfedges
	out := make([]int, len(hs))
	for i, h := range hs {
		out[i] = m.Halfedges[h].Vertex
	}
	return out
}

// FacePolygon returns the outline of face f on the unfolded paper.
func (m *OrigamiModel) FacePolygon(f int) geom.Polygon {
	hs := m.Faces[f].Halfedges
	p := make(geom.Polygon, len(hs))
	for i, h := range hs {
		p[i] = m.Vertices[m.Halfedges[h].Vertex].PrePosition
	}
	return p
}

// FoldedPolygon returns the outline of face f after folding.
func (m *OrigamiModel) FoldedPolygon(f int) geom.Polygon {
	hs := m.Faces[f].Halfedges
	p := make(geom.Polygon, len(hs))
	for i, h := range hs {
		p[i] = m.Vertices[m.Halfedges[h].Vertex].Position
	}
	return p
}

// EdgeSegment returns edge e on the unfolded paper.
func (m *OrigamiModel) EdgeSegment(e int) geom.Segment {
	ed := m.Edges[e]
	return geom.Seg(m.Vertices[ed.V0].PrePosition, m.Vertices[ed.V1].PrePosition)
}

// FoldedEdgeSegment returns edge e after folding.
func (m *OrigamiModel) FoldedEdgeSegment(e int) geom.Segment {
	ed := m.Edges[e]
	return geom.Seg(m.Vertices[ed.V0].Position, m.Vertices[ed.V1].Position)
}

// EdgeFaces returns the faces on the left and right of edge e (-1 if none).
func (m *OrigamiModel) EdgeFaces(e int) (left, right int) {
	left, right = -1, -1
	if h := m.Edges[e].Left; h >= 0 {
		left = m.Halfedges[h].Face
	}
	if h := m.Edges[e].Right; h >= 0 {
		right = m.Halfedges[h].Face
	}
	return left, right
}

// IsBoundaryVertex reports whether v touches a Cut edge.
func (m *OrigamiModel) IsBoundaryVertex(v int) bool {
	for _, e := range m.Vertices[v].Edges {
		if m.Edges[e].Type == model.LineCut {
			return true
		}
	}
	return false
}

// Validate checks the half-edge invariants: every next/prev pair agrees,
// every face loop closes on itself, and only Cut edges may have a single face.
func (m *OrigamiModel) Validate() error {
	for i, h := range m.Halfedges {
		if m.Halfedges[h.Next].Prev != i || m.Halfedges[h.Prev].Next != i {
			return fmt.Errorf("half-edge %d: next/prev mismatch", i)
		}
		if m.Halfedges[h.Next].Face != h.Face {
			return fmt.Errorf("half-edge %d: next leaves face %d", i, h.Face)
		}
	}
	for f, face := range m.Faces {
		if len(face.Halfedges) < 3 {
			return fmt.Errorf("face %d has %d half-edges", f, len(face.Halfedges))
		}
		start := face.Halfedges[0]
		h := start
		for steps := 0; ; steps++ {
			if steps > len(m.Halfedges) {
				return fmt.Errorf("face %d loop does not close", f)
			}
			h = m.Halfedges[h].Next
			if h == start {
				if steps+1 != len(face.Halfedges) {
					return fmt.Errorf("face %d loop length %d, want %d", f, steps+1, len(face.Halfedges))
				}
				break
			}
		}
	}
	for i, e := range m.Edges {
		for _, h := range []int{e.Left, e.Right} {
			if h >= 0 && m.Halfedges[h].Edge != i {
				return fmt.Errorf("edge %d: half-edge %d points at edge %d", i, h, m.Halfedges[h].Edge)
			}
		}
		if e.Left < 0 && e.Right < 0 {
			return fmt.Errorf("edge %d bounds no face", i)
		}
		if e.Type.IsFold() && (e.Left < 0 || e.Right < 0) {
			return fmt.Errorf("crease %d lies on the paper boundary", i)
		}
	}
	return nil
}

// IsOuterCut reports whether a Cut edge lies on the outer paper boundary,
// i.e. only one of its sides is covered by a face.
func (m *OrigamiModel) IsOuterCut(e int) bool {
	return m.Edges[e].Type == model.LineCut && (m.Edges[e].Left < 0 || m.Edges[e].Right < 0)
}

// Stats summarises the mesh size for logging.
func (m *OrigamiModel) Stats() (vertices, edges, faces int) {
	return len(m.Vertices), len(m.Edges), len(m.Faces)
}
