package model

import (
	"time"

	"github.com/google/uuid"
)

// LineType represents the role of a crease pattern line.
type LineType int

const (
	LineCut       LineType = iota // Paper boundary or cut; belongs to at most one face
	LineMountain                  // Mountain fold
	LineValley                    // Valley fold
	LineAuxiliary                 // Construction line; ignored by folding
)

func (t LineType) String() string {
	switch t {
	case LineCut:
		return "Cut"
	case LineMountain:
		return "Mountain"
	case LineValley:
		return "Valley"
	default:
		return "Auxiliary"
	}
}

// IsFold reports whether the line is a mountain or valley crease.
func (t LineType) IsFold() bool {
	return t == LineMountain || t == LineValley
}

// Point2D represents a 2D coordinate in paper units.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Line is a single crease pattern segment.
type Line struct {
	ID   string   `json:"id"`
	P0   Point2D  `json:"p0"`
	P1   Point2D  `json:"p1"`
	Type LineType `json:"type"`
}

func NewLine(x0, y0, x1, y1 float64, t LineType) Line {
	return Line{
		ID:   uuid.New().String()[:8],
		P0:   Point2D{X: x0, Y: y0},
		P1:   Point2D{X: x1, Y: y1},
		Type: t,
	}
}

// CreasePattern is the input of the folding pipeline: a set of typed line
// segments on a sheet of paper. Boundary segments are Cut lines.
type CreasePattern struct {
	PaperSize float64 `json:"paper_size"`
	Lines     []Line  `json:"lines"`
}

// NewSquarePaper returns a crease pattern holding only the boundary of a
// square of the given size centred on the origin.
func NewSquarePaper(size float64) CreasePattern {
	h := size / 2
	return CreasePattern{
		PaperSize: size,
		Lines: []Line{
			NewLine(-h, -h, h, -h, LineCut),
			NewLine(h, -h, h, h, LineCut),
			NewLine(h, h, -h, h, LineCut),
			NewLine(-h, h, -h, -h, LineCut),
		},
	}
}

// Add appends a line of the given type and returns the pattern for chaining.
func (cp *CreasePattern) Add(x0, y0, x1, y1 float64, t LineType) *CreasePattern {
	cp.Lines = append(cp.Lines, NewLine(x0, y0, x1, y1, t))
	return cp
}

// CountByType returns the number of lines per type.
func (cp CreasePattern) CountByType() map[LineType]int {
	counts := make(map[LineType]int)
	for _, l := range cp.Lines {
		counts[l.Type]++
	}
	return counts
}

// Clone returns a copy with an independent line slice.
func (cp CreasePattern) Clone() CreasePattern {
	lines := make([]Line, len(cp.Lines))
	copy(lines, cp.Lines)
	return CreasePattern{PaperSize: cp.PaperSize, Lines: lines}
}

// FoldSettings holds tolerances and search configuration for the folding pipeline.
type FoldSettings struct {
	// Geometry
	PointEps float64 `json:"point_eps"` // Point equality tolerance in paper units
	AngleEps float64 `json:"angle_eps"` // Angle tolerance in radians for the local checks

	// Local checks
	CheckKawasaki  bool `json:"check_kawasaki"`  // Also test alternate angle sums
	NormalizeLines bool `json:"normalize_lines"` // Split crossings and remove duplicates before meshing

	// Layer ordering search
	FullEstimation   bool  `json:"full_estimation"`    // Enumerate all stackings instead of the first
	MaxSolutions     int   `json:"max_solutions"`      // Enumeration cap per cluster
	SearchStepBudget int   `json:"search_step_budget"` // Search steps per cluster; 0 = unbounded
	SearchTimeoutMs  int64 `json:"search_timeout_ms"`  // Wall clock limit for the whole search; 0 = none
	Workers          int   `json:"workers"`            // Worker goroutines; 0 = GOMAXPROCS
}

// SearchTimeout returns the configured wall-clock limit.
func (s FoldSettings) SearchTimeout() time.Duration {
	return time.Duration(s.SearchTimeoutMs) * time.Millisecond
}

func DefaultSettings() FoldSettings {
	return FoldSettings{
		PointEps:         1e-5,
		AngleEps:         1e-5,
		CheckKawasaki:    true,
		NormalizeLines:   true,
		FullEstimation:   false,
		MaxSolutions:     10000,
		SearchStepBudget: 2000000,
		SearchTimeoutMs:  30000,
		Workers:          0,
	}
}

// Project ties everything together for save/load.
type Project struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	CreasePattern CreasePattern  `json:"crease_pattern"`
	Settings      FoldSettings   `json:"settings"`
	Summary       *ResultSummary `json:"summary,omitempty"`
}

func NewProject() Project {
	return Project{
		ID:       uuid.New().String()[:8],
		Name:     "Untitled",
		Settings: DefaultSettings(),
		CreasePattern: CreasePattern{
			Lines: []Line{},
		},
	}
}

// ResultSummary is the persisted digest of a computation.
type ResultSummary struct {
	Models               int    `json:"models"`
	Faces                int    `json:"faces"`
	SubFaces             int    `json:"subfaces"`
	LocallyFlatFoldable  bool   `json:"locally_flat_foldable"`
	FoldablePatternCount int    `json:"foldable_pattern_count"`
	Status               string `json:"status"`
}
