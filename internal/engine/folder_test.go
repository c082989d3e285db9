package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/CreaseStack/internal/layer"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/model"
)

func testSettings() model.FoldSettings {
	s := model.DefaultSettings()
	s.FullEstimation = true
	s.Workers = 2
	return s
}

func crossPattern(types ...model.LineType) model.CreasePattern {
	cp := model.NewSquarePaper(2)
	cp.Add(0, 0, 1, 0, types[0]).
		Add(0, 0, 0, 1, types[1]).
		Add(0, 0, -1, 0, types[2]).
		Add(0, 0, 0, -1, types[3])
	return cp
}

func compute(t *testing.T, s model.FoldSettings, cp model.CreasePattern) *ComputationResult {
	t.Helper()
	res, err := New(s).Compute(context.Background(), cp)
	require.NoError(t, err)
	return res
}

func TestCompute_BlankSquare(t *testing.T) {
	res := compute(t, testSettings(), model.NewSquarePaper(400))

	require.Len(t, res.Models, 1)
	assert.Len(t, res.Models[0].Model.Faces, 1)
	assert.True(t, res.LocallyFlatFoldable)
	assert.Zero(t, res.Models[0].Check.CheckedVertices)
	assert.Empty(t, res.Models[0].SubFaces.SubFaces)
	assert.EqualValues(t, 1, res.FoldablePatternCount)
	assert.Equal(t, "solved", res.Status())
}

func TestCompute_DiagonalMountain(t *testing.T) {
	cp := model.NewSquarePaper(2)
	cp.Add(-1, -1, 1, 1, model.LineMountain)
	res := compute(t, testSettings(), cp)

	require.Len(t, res.Models, 1)
	mr := res.Models[0]
	assert.Len(t, mr.Model.Faces, 2)
	assert.Zero(t, mr.Check.CheckedVertices)
	assert.EqualValues(t, 1, res.FoldablePatternCount)
	require.Len(t, mr.Stacking.Relations, 1)
	assert.NotEqual(t, layer.Undefined, mr.Stacking.Relations[0].Get(0, 1))
}

func TestCompute_FlatFoldableVertex(t *testing.T) {
	V, M := model.LineValley, model.LineMountain
	res := compute(t, testSettings(), crossPattern(V, V, V, M))

	assert.True(t, res.LocallyFlatFoldable)
	assert.GreaterOrEqual(t, res.FoldablePatternCount, int64(1))
	assert.Equal(t, "solved", res.Status())

	sum := res.Summary()
	assert.Equal(t, 1, sum.Models)
	assert.Equal(t, 4, sum.Faces)
	assert.Equal(t, 1, sum.SubFaces)
	assert.True(t, sum.LocallyFlatFoldable)
}

func TestCompute_MaekawaViolation(t *testing.T) {
	V, M := model.LineValley, model.LineMountain
	res := compute(t, testSettings(), crossPattern(M, V, M, V))

	assert.False(t, res.LocallyFlatFoldable)
	assert.EqualValues(t, NotFoldable, res.FoldablePatternCount)
	mr := res.Models[0]
	assert.Nil(t, mr.Stacking, "search not attempted")
	assert.Nil(t, mr.SubFaces)
	assert.True(t, mr.Model.Folded, "shape still folded for display")
	assert.Equal(t, "not locally flat-foldable", mr.Status())
	assert.EqualValues(t, NotFoldable, res.Summary().FoldablePatternCount)
}

func TestCompute_InconsistentFold(t *testing.T) {
	s := testSettings()
	s.CheckKawasaki = false
	cp := model.NewSquarePaper(2)
	// creases towards 0°, 80°, 180° and 270°
	cp.Add(0, 0, 1, 0, model.LineMountain).
		Add(0, 0, 0.17632698070846498, 1, model.LineValley).
		Add(0, 0, -1, 0, model.LineMountain).
		Add(0, 0, 0, -1, model.LineMountain)
	res := compute(t, s, cp)

	assert.True(t, res.LocallyFlatFoldable)
	mr := res.Models[0]
	assert.NotEmpty(t, mr.FoldError)
	assert.Nil(t, mr.Stacking)
	assert.Zero(t, res.FoldablePatternCount)
	assert.Equal(t, "unsolvable", res.Status())
}

func TestCompute_SeparatePieces(t *testing.T) {
	cp := model.NewSquarePaper(2)
	cp.Add(0, -1, 0, 1, model.LineValley)
	for _, l := range model.NewSquarePaper(2).Lines {
		cp.Add(l.P0.X+5, l.P0.Y, l.P1.X+5, l.P1.Y, l.Type)
	}
	res := compute(t, testSettings(), cp)

	require.Len(t, res.Models, 2)
	assert.Len(t, res.Models[0].Model.Faces, 2)
	assert.Len(t, res.Models[1].Model.Faces, 1)
	assert.EqualValues(t, 2, res.FoldablePatternCount, "counts add up across pieces")
}

func TestCompute_OneUnfoldablePieceSkipsAllSearches(t *testing.T) {
	V, M := model.LineValley, model.LineMountain
	cp := crossPattern(M, V, M, V)
	for _, l := range model.NewSquarePaper(2).Lines {
		cp.Add(l.P0.X+5, l.P0.Y, l.P1.X+5, l.P1.Y, l.Type)
	}
	cp.Add(5, -1, 5, 1, model.LineValley)
	res := compute(t, testSettings(), cp)

	require.Len(t, res.Models, 2)
	assert.False(t, res.LocallyFlatFoldable)
	assert.EqualValues(t, NotFoldable, res.FoldablePatternCount)

	var failed, passed int
	for _, mr := range res.Models {
		assert.Nil(t, mr.Stacking, "no search on any piece")
		assert.Nil(t, mr.SubFaces)
		assert.True(t, mr.Model.Folded, "shape still folded for display")
		assert.EqualValues(t, NotFoldable, mr.Count())
		if mr.Check.OK {
			passed++
			assert.True(t, mr.SearchSkipped)
			assert.Equal(t, "not attempted", mr.Status())
		} else {
			failed++
			assert.False(t, mr.SearchSkipped)
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, passed)
	assert.Equal(t, "not locally flat-foldable", res.Status())
}

func TestCompute_AuxiliaryLinesIgnored(t *testing.T) {
	cp := model.NewSquarePaper(2)
	cp.Add(-1, -1, 1, 1, model.LineAuxiliary).Add(-1, 1, 1, -1, model.LineAuxiliary)
	res := compute(t, testSettings(), cp)
	assert.Len(t, res.Models[0].Model.Faces, 1)
	assert.EqualValues(t, 1, res.FoldablePatternCount)
}

func TestCompute_MeshError(t *testing.T) {
	cp := model.CreasePattern{}
	cp.Add(0, 0, 1, 0, model.LineCut).Add(1, 0, 1, 1, model.LineCut)
	_, err := New(testSettings()).Compute(context.Background(), cp)
	require.Error(t, err)
	assert.True(t, mesh.IsMeshBuildError(err))
}

func TestCompute_FirstSolutionOnly(t *testing.T) {
	s := testSettings()
	s.FullEstimation = false
	cp := model.CreasePattern{PaperSize: 3}
	cp.Add(0, 0, 3, 0, model.LineCut).
		Add(3, 0, 3, 1, model.LineCut).
		Add(3, 1, 0, 1, model.LineCut).
		Add(0, 1, 0, 0, model.LineCut).
		Add(1, 0, 1, 1, model.LineValley).
		Add(2, 0, 2, 1, model.LineValley)

	assert.EqualValues(t, 1, compute(t, s, cp).FoldablePatternCount)
	assert.EqualValues(t, 2, compute(t, testSettings(), cp).FoldablePatternCount)
}

func TestCompute_BuiltInTemplates(t *testing.T) {
	s := testSettings()
	s.FullEstimation = false
	for _, tmpl := range model.BuiltInTemplates(400) {
		t.Run(tmpl.Name, func(t *testing.T) {
			res := compute(t, s, tmpl.CreasePattern)
			assert.True(t, res.LocallyFlatFoldable)
			assert.EqualValues(t, 1, res.FoldablePatternCount)
		})
	}
}

func TestCompareScenarios(t *testing.T) {
	scenarios := BuildDefaultScenarios(model.DefaultSettings())
	require.Len(t, scenarios, 5)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, "Full Estimation", scenarios[1].Name)
	assert.True(t, scenarios[1].Settings.FullEstimation)
	assert.False(t, scenarios[3].Settings.CheckKawasaki)
	assert.False(t, scenarios[4].Settings.NormalizeLines)

	cp := model.NewSquarePaper(2)
	cp.Add(-1, -1, 1, 1, model.LineValley).Add(-1, 1, 1, -1, model.LineValley)
	results := CompareScenarios(context.Background(), scenarios, cp)
	require.Len(t, results, 5)
	assert.Equal(t, NotFoldable, results[0].Summary.FoldablePatternCount, "four valleys break Maekawa")
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[4].Err, "crossing lines need normalisation")
	assert.Equal(t, "mesh error", results[4].Summary.Status)
}
