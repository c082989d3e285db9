package fold

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CreaseStack/internal/geom"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/model"
)

const eps = 1e-6

func build(t *testing.T, cp model.CreasePattern) *mesh.OrigamiModel {
	t.Helper()
	cp.Lines = mesh.Normalize(cp.Lines, eps)
	models, err := mesh.Build(cp, eps)
	require.NoError(t, err)
	require.Len(t, models, 1)
	return models[0]
}

func TestApply_BlankSquare(t *testing.T) {
	m := build(t, model.NewSquarePaper(2))
	require.NoError(t, Apply(m, eps))
	assert.True(t, m.Folded)
	assert.True(t, m.Faces[0].Front)
	for _, v := range m.Vertices {
		assert.Equal(t, v.PrePosition, v.Position)
	}
}

func TestApply_BookFold(t *testing.T) {
	cp := model.NewSquarePaper(2)
	cp.Add(0, -1, 0, 1, model.LineValley)
	m := build(t, cp)
	require.NoError(t, Apply(m, eps))
	require.Len(t, m.Faces, 2)

	assert.True(t, m.Faces[0].Front)
	assert.False(t, m.Faces[1].Front)

	// both halves land on the half of face 0
	side := math.Copysign(1, m.FacePolygon(0).Centroid().X)
	for _, v := range m.Vertices {
		assert.GreaterOrEqual(t, v.Position.X*side, -eps)
	}
	a, b := m.FoldedPolygon(0), m.FoldedPolygon(1)
	assert.InDelta(t, a.Area(), b.Area(), 1e-9)
	assert.True(t, a.Centroid().Equal(b.Centroid(), 1e-9))
}

func TestApply_DiagonalFold(t *testing.T) {
	cp := model.NewSquarePaper(2)
	cp.Add(-1, -1, 1, 1, model.LineMountain)
	m := build(t, cp)
	require.NoError(t, Apply(m, eps))

	a, b := m.FoldedPolygon(0), m.FoldedPolygon(1)
	assert.True(t, a.Centroid().Equal(b.Centroid(), 1e-9))
	assert.NotEqual(t, m.Faces[0].Front, m.Faces[1].Front)
}

func TestApply_DoubleFold(t *testing.T) {
	cp := model.NewSquarePaper(2)
	cp.Add(0, 0, 1, 0, model.LineValley).
		Add(0, 0, 0, 1, model.LineValley).
		Add(0, 0, -1, 0, model.LineValley).
		Add(0, 0, 0, -1, model.LineMountain)
	m := build(t, cp)
	require.NoError(t, Apply(m, eps))
	require.Len(t, m.Faces, 4)

	fronts := 0
	c0 := m.FoldedPolygon(0).Centroid()
	for f := range m.Faces {
		if m.Faces[f].Front {
			fronts++
		}
		assert.True(t, m.FoldedPolygon(f).Centroid().Equal(c0, 1e-9), "face %d", f)
	}
	assert.Equal(t, 2, fronts)
}

func TestApply_Inconsistent(t *testing.T) {
	// sectors of 80, 100, 90 and 90 degrees cannot fold flat
	cp := model.NewSquarePaper(2)
	dir := geom.V(math.Cos(80*math.Pi/180), math.Sin(80*math.Pi/180))
	s := 1 / dir.Y
	cp.Add(0, 0, 1, 0, model.LineMountain).
		Add(0, 0, dir.X*s, 1, model.LineValley).
		Add(0, 0, -1, 0, model.LineMountain).
		Add(0, 0, 0, -1, model.LineMountain)
	m := build(t, cp)

	err := Apply(m, eps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInconsistentFold))
	assert.True(t, m.Folded)

	m2 := build(t, cp)
	ApplyWithoutLineType(m2)
	assert.True(t, m2.Folded)
}

func TestReflection(t *testing.T) {
	r := reflection(geom.V(0, 1), geom.V(1, 2))
	p := r.apply(geom.V(1, 0))
	assert.InDelta(t, -1, p.X, 1e-12)
	assert.InDelta(t, 2, p.Y, 1e-12)
	assert.Less(t, r.det(), 0.0)

	twice := r.then(r)
	q := twice.apply(geom.V(3, -4))
	assert.InDelta(t, 3, q.X, 1e-12)
	assert.InDelta(t, -4, q.Y, 1e-12)
}

func TestCreaseCount(t *testing.T) {
	cp := model.NewSquarePaper(2)
	cp.Add(0, -1, 0, 1, model.LineValley)
	mc, vc := CreaseCount(build(t, cp))
	assert.Equal(t, 0, mc)
	assert.Equal(t, 1, vc)
}
