package foldability

import (
	"github.com/samber/lo"

	"github.com/piwi3910/CreaseStack/internal/logging"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// Violation records one failed rule at one vertex.
type Violation struct {
	Vertex   int        `json:"vertex"`
	Rule     string     `json:"rule"`
	Position [2]float64 `json:"position"`
}

// Report is the outcome of a local flat-foldability check.
type Report struct {
	OK              bool        `json:"ok"`
	CheckedVertices int         `json:"checked_vertices"`
	Violations      []Violation `json:"violations,omitempty"`
}

// ViolatingVertices returns the distinct vertices with at least one violation.
func (r Report) ViolatingVertices() []int {
	return lo.Uniq(lo.Map(r.Violations, func(v Violation, _ int) int { return v.Vertex }))
}

// Checker applies the configured rules to every interior vertex.
type Checker struct {
	settings model.FoldSettings
	rules    []Rule
}

// NewChecker builds a checker with Maekawa and big-little-big, plus the
// Kawasaki angle sum when enabled in the settings.
func NewChecker(settings model.FoldSettings) *Checker {
	rules := []Rule{Maekawa{}}
	if settings.CheckKawasaki {
		rules = append(rules, Kawasaki{})
	}
	rules = append(rules, BigLittleBig{})
	return &Checker{settings: settings, rules: rules}
}

// Rules returns the rule names in evaluation order.
func (c *Checker) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name()
	}
	return names
}

// Check evaluates every vertex that does not touch a Cut edge. All
// violations are collected; OK is false if there is any.
func (c *Checker) Check(m *mesh.OrigamiModel) Report {
	report := Report{OK: true}
	for v := range m.Vertices {
		if m.IsBoundaryVertex(v) {
			continue
		}
		report.CheckedVertices++
		for _, r := range c.rules {
			if r.Holds(m, v, c.settings.AngleEps) {
				continue
			}
			p := m.Vertices[v].PrePosition
			report.OK = false
			report.Violations = append(report.Violations, Violation{
				Vertex:   v,
				Rule:     r.Name(),
				Position: [2]float64{p.X, p.Y},
			})
			logging.Logger().Debug("local flat foldability violated",
				"rule", r.Name(), "vertex", v, "x", p.X, "y", p.Y)
		}
	}
	return report
}
