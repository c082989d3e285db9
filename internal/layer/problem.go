package layer

import (
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/subface"
)

// NewProblem seeds the relation of a folded model and derives its conditions.
func NewProblem(m *mesh.OrigamiModel, sub *subface.Result, eps float64) *Problem {
	seed, ok := SeedRelation(m, sub)
	return NewProblemFromParts(seed, BuildConditions(m, sub, eps), ok)
}
