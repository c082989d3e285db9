// Package foldformat reads and writes the FOLD interchange format for
// origami models and their layer orders.
package foldformat

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/layer"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/model"
)

const (
	FileSpec    = 1.1
	FileCreator = "creasestack"

	FrameCreasePattern = "creasePattern"
	FrameFoldedForm    = "foldedForm"
)

// Document is a single-frame FOLD file.
type Document struct {
	FileSpec        float64     `json:"file_spec"`
	FileCreator     string      `json:"file_creator,omitempty"`
	FrameClasses    []string    `json:"frame_classes,omitempty"`
	VerticesCoords  [][]float64 `json:"vertices_coords"`
	EdgesVertices   [][]int     `json:"edges_vertices"`
	EdgesAssignment []string    `json:"edges_assignment"`
	FacesVertices   [][]int     `json:"faces_vertices,omitempty"`
	FaceOrders      [][]int     `json:"face_orders,omitempty"`

	// FaceOrdersCamel accepts files written with the camel-case key.
	FaceOrdersCamel [][]int `json:"faceOrders,omitempty"`
}

// IsFolded reports whether the coordinates describe the folded form.
func (d *Document) IsFolded() bool {
	return slices.Contains(d.FrameClasses, FrameFoldedForm)
}

// Orders returns the face orders under either key.
func (d *Document) Orders() [][]int {
	if len(d.FaceOrders) > 0 {
		return d.FaceOrders
	}
	return d.FaceOrdersCamel
}

// AssignmentOf maps a line type to its FOLD edge assignment.
func AssignmentOf(t model.LineType) string {
	switch t {
	case model.LineMountain:
		return "M"
	case model.LineValley:
		return "V"
	case model.LineCut:
		return "B"
	}
	return "U"
}

// LineTypeOf maps a FOLD edge assignment to a line type. Unknown tags become
// auxiliary lines.
func LineTypeOf(a string) model.LineType {
	switch a {
	case "M", "m":
		return model.LineMountain
	case "V", "v":
		return model.LineValley
	case "B", "b", "C", "c":
		return model.LineCut
	}
	return model.LineAuxiliary
}

// FromModel converts a model to a FOLD document. Folded models export their
// folded coordinates. When rel is non-nil its orders become face_orders.
func FromModel(m *mesh.OrigamiModel, rel *layer.Relation) *Document {
	doc := &Document{
		FileSpec:     FileSpec,
		FileCreator:  FileCreator,
		FrameClasses: []string{FrameCreasePattern},
	}
	if m.Folded {
		doc.FrameClasses = []string{FrameFoldedForm}
	}

	doc.VerticesCoords = make([][]float64, len(m.Vertices))
	for i, v := range m.Vertices {
		p := v.PrePosition
		if m.Folded {
			p = v.Position
		}
		doc.VerticesCoords[i] = []float64{p.X, p.Y}
	}
	doc.EdgesVertices = make([][]int, len(m.Edges))
	doc.EdgesAssignment = make([]string, len(m.Edges))
	for i, e := range m.Edges {
		doc.EdgesVertices[i] = []int{e.V0, e.V1}
		doc.EdgesAssignment[i] = AssignmentOf(e.Type)
	}
	doc.FacesVertices = make([][]int, len(m.Faces))
	for f := range m.Faces {
		doc.FacesVertices[f] = m.FaceVertices(f)
	}

	if rel != nil {
		doc.FaceOrders = faceOrders(m, rel)
	}
	return doc
}

// faceOrders lists [i, j, dir] for every ordered pair i < j. The sign is
// taken relative to face j's front side.
func faceOrders(m *mesh.OrigamiModel, rel *layer.Relation) [][]int {
	var out [][]int
	for i := range m.Faces {
		for j := i + 1; j < len(m.Faces); j++ {
			var dir int
			switch rel.Get(i, j) {
			case layer.Upper:
				dir = 1
			case layer.Lower:
				dir = -1
			default:
				continue
			}
			if !m.Faces[j].Front {
				dir = -dir
			}
			out = append(out, []int{i, j, dir})
		}
	}
	return out
}

// ToModel rebuilds a model and its relation from a document. The relation is
// nil when the document carries no face orders. A face whose first three
// vertices turn clockwise is marked as showing its back.
func ToModel(doc *Document) (*mesh.OrigamiModel, *layer.Relation, error) {
	if len(doc.EdgesAssignment) != 0 && len(doc.EdgesAssignment) != len(doc.EdgesVertices) {
		return nil, nil, fmt.Errorf("edges_assignment has %d entries for %d edges",
			len(doc.EdgesAssignment), len(doc.EdgesVertices))
	}

	m := &mesh.OrigamiModel{Folded: doc.IsFolded()}
	for i, c := range doc.VerticesCoords {
		if len(c) < 2 {
			return nil, nil, fmt.Errorf("vertex %d: expected 2 coordinates, got %d", i, len(c))
		}
		p := geom.V(c[0], c[1])
		m.Vertices = append(m.Vertices, mesh.Vertex{ID: i, PrePosition: p, Position: p})
	}

	byEnds := make(map[[2]int]int)
	for i, ev := range doc.EdgesVertices {
		if len(ev) != 2 || !validVertex(m, ev[0]) || !validVertex(m, ev[1]) {
			return nil, nil, fmt.Errorf("edge %d: invalid vertices %v", i, ev)
		}
		typ := model.LineAuxiliary
		if len(doc.EdgesAssignment) > 0 {
			typ = LineTypeOf(doc.EdgesAssignment[i])
		}
		m.Edges = append(m.Edges, mesh.Edge{ID: i, V0: ev[0], V1: ev[1], Type: typ, Left: -1, Right: -1})
		byEnds[[2]int{min(ev[0], ev[1]), max(ev[0], ev[1])}] = i
		m.Vertices[ev[0]].Edges = append(m.Vertices[ev[0]].Edges, i)
		m.Vertices[ev[1]].Edges = append(m.Vertices[ev[1]].Edges, i)
	}
	for v := range m.Vertices {
		sortAround(m, v)
	}

	for f, fv := range doc.FacesVertices {
		if len(fv) < 3 {
			return nil, nil, fmt.Errorf("face %d: needs at least 3 vertices", f)
		}
		face := mesh.Face{ID: f, Front: true, Halfedges: make([]int, len(fv))}
		base := len(m.Halfedges)
		for k, v := range fv {
			w := fv[(k+1)%len(fv)]
			if !validVertex(m, v) {
				return nil, nil, fmt.Errorf("face %d: invalid vertex %d", f, v)
			}
			e, ok := byEnds[[2]int{min(v, w), max(v, w)}]
			if !ok {
				return nil, nil, fmt.Errorf("face %d: no edge between vertices %d and %d", f, v, w)
			}
			h := base + k
			m.Halfedges = append(m.Halfedges, mesh.Halfedge{
				ID:     h,
				Vertex: v,
				Edge:   e,
				Face:   f,
				Next:   base + (k+1)%len(fv),
				Prev:   base + (k-1+len(fv))%len(fv),
			})
			if m.Edges[e].V0 == v {
				m.Edges[e].Left = h
			} else {
				m.Edges[e].Right = h
			}
			face.Halfedges[k] = h
		}
		a, b, c := m.Vertices[fv[0]].Position, m.Vertices[fv[1]].Position, m.Vertices[fv[2]].Position
		if b.Sub(a).Cross(c.Sub(a)) < 0 {
			face.Front = false
		}
		m.Faces = append(m.Faces, face)
	}

	orders := doc.Orders()
	if len(orders) == 0 {
		return m, nil, nil
	}
	rel := layer.NewRelation(len(m.Faces))
	for k, o := range orders {
		if len(o) != 3 || o[0] < 0 || o[1] < 0 || o[0] >= len(m.Faces) || o[1] >= len(m.Faces) || o[0] == o[1] {
			return nil, nil, fmt.Errorf("face order %d: invalid entry %v", k, o)
		}
		i, j, dir := o[0], o[1], o[2]
		if !m.Faces[j].Front {
			dir = -dir
		}
		switch dir {
		case 1:
			rel.Set(i, j, layer.Upper)
		case -1:
			rel.Set(i, j, layer.Lower)
		}
	}
	return m, rel, nil
}

func validVertex(m *mesh.OrigamiModel, v int) bool {
	return v >= 0 && v < len(m.Vertices)
}

func sortAround(m *mesh.OrigamiModel, v int) {
	origin := m.Vertices[v].PrePosition
	es := m.Vertices[v].Edges
	sort.SliceStable(es, func(a, b int) bool {
		pa := m.Vertices[m.OtherVertex(es[a], v)].PrePosition.Sub(origin).Angle()
		pb := m.Vertices[m.OtherVertex(es[b], v)].PrePosition.Sub(origin).Angle()
		return pa < pb
	})
}

// Encode writes the document as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode FOLD document: %w", err)
	}
	return nil
}

// Decode reads a document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse FOLD document: %w", err)
	}
	return &doc, nil
}

// SaveFile writes the document to path, creating parent directories.
func SaveFile(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create FOLD file: %w", err)
	}
	defer f.Close()
	return Encode(f, doc)
}

// LoadFile reads a document from path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FOLD file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// CreasePatternOf turns the edges of a document into crease pattern lines.
func CreasePatternOf(doc *Document) (model.CreasePattern, error) {
	var cp model.CreasePattern
	for i, ev := range doc.EdgesVertices {
		if len(ev) != 2 || ev[0] < 0 || ev[1] < 0 || ev[0] >= len(doc.VerticesCoords) || ev[1] >= len(doc.VerticesCoords) {
			return cp, fmt.Errorf("edge %d: invalid vertices %v", i, ev)
		}
		a, b := doc.VerticesCoords[ev[0]], doc.VerticesCoords[ev[1]]
		if len(a) < 2 || len(b) < 2 {
			return cp, fmt.Errorf("edge %d: vertex without coordinates", i)
		}
		typ := model.LineAuxiliary
		if i < len(doc.EdgesAssignment) {
			typ = LineTypeOf(doc.EdgesAssignment[i])
		}
		cp.Add(a[0], a[1], b[0], b[1], typ)
	}
	return cp, nil
}
