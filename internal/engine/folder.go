// Package engine runs the whole folding pipeline on a crease pattern:
// meshing, local checks, folding, subface analysis and layer ordering.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/CreaseStack/internal/fold"
	"github.com/piwi3910/CreaseStack/internal/foldability"
	"github.com/piwi3910/CreaseStack/internal/layer"
	"github.com/piwi3910/CreaseStack/internal/logging"
	"github.com/piwi3910/CreaseStack/internal/mesh"
	"github.com/piwi3910/CreaseStack/internal/model"
	"github.com/piwi3910/CreaseStack/internal/parallel"
	"github.com/piwi3910/CreaseStack/internal/subface"
)

// NotFoldable is the pattern count reported when a local check fails and no
// stacking search was attempted.
const NotFoldable = -1

// Folder computes flat-folded states.
type Folder struct {
	Settings model.FoldSettings
}

func New(settings model.FoldSettings) *Folder {
	return &Folder{Settings: settings}
}

// ModelResult is the outcome for one connected piece of paper.
type ModelResult struct {
	Model    *mesh.OrigamiModel `json:"model"`
	Check    foldability.Report `json:"check"`
	SubFaces *subface.Result    `json:"subfaces,omitempty"` // nil when stacking was not attempted
	Stacking *layer.Result      `json:"stacking,omitempty"` // nil when stacking was not attempted
	// FoldError is set when the faces cannot be placed consistently even
	// though the local checks passed.
	FoldError string `json:"fold_error,omitempty"`
	// SearchSkipped is set on a piece that passed its own checks while
	// another piece of the same pattern failed them.
	SearchSkipped bool `json:"search_skipped,omitempty"`
}

// Count returns the foldable pattern count of this model.
func (r ModelResult) Count() int64 {
	switch {
	case !r.Check.OK, r.SearchSkipped:
		return NotFoldable
	case r.Stacking == nil:
		return 0
	}
	return r.Stacking.Count
}

// Status describes the model outcome in words.
func (r ModelResult) Status() string {
	switch {
	case !r.Check.OK:
		return "not locally flat-foldable"
	case r.SearchSkipped:
		return "not attempted"
	case r.Stacking == nil:
		return layer.Unsolvable.String()
	}
	return r.Stacking.Status.String()
}

// FirstRelation returns the first stored layer order, or nil when none was found.
func (r ModelResult) FirstRelation() *layer.Relation {
	if r.Stacking == nil || len(r.Stacking.Relations) == 0 {
		return nil
	}
	return r.Stacking.Relations[0]
}

// ComputationResult is the outcome for a whole crease pattern.
type ComputationResult struct {
	Models []ModelResult `json:"models"`
	// LocallyFlatFoldable is true when every model passed the local checks.
	LocallyFlatFoldable bool `json:"locally_flat_foldable"`
	// FoldablePatternCount sums the per-model counts, or is NotFoldable when
	// any model failed the local checks.
	FoldablePatternCount int64 `json:"foldable_pattern_count"`
}

// Status is the least favourable model status.
func (r *ComputationResult) Status() string {
	if !r.LocallyFlatFoldable {
		return "not locally flat-foldable"
	}
	status := layer.Solved
	for _, m := range r.Models {
		switch {
		case m.Stacking == nil:
			status = layer.Unsolvable
		case m.Stacking.Status == layer.Unsolvable:
			status = layer.Unsolvable
		case m.Stacking.Status == layer.BudgetExceeded && status == layer.Solved:
			status = layer.BudgetExceeded
		}
	}
	return status.String()
}

// Summary condenses the result for persistence and reports.
func (r *ComputationResult) Summary() model.ResultSummary {
	s := model.ResultSummary{
		Models:               len(r.Models),
		LocallyFlatFoldable:  r.LocallyFlatFoldable,
		FoldablePatternCount: int(r.FoldablePatternCount),
		Status:               r.Status(),
	}
	for _, m := range r.Models {
		s.Faces += len(m.Model.Faces)
		if m.SubFaces != nil {
			s.SubFaces += len(m.SubFaces.SubFaces)
		}
	}
	return s
}

// PrepareLines drops auxiliary lines and, when enabled, normalises the rest.
func (f *Folder) PrepareLines(cp model.CreasePattern) model.CreasePattern {
	out := model.CreasePattern{PaperSize: cp.PaperSize}
	for _, l := range cp.Lines {
		if l.Type != model.LineAuxiliary {
			out.Lines = append(out.Lines, l)
		}
	}
	if f.Settings.NormalizeLines {
		out.Lines = mesh.Normalize(out.Lines, f.Settings.PointEps)
	}
	return out
}

// Compute builds the models of cp and solves each of them. A crease pattern
// that does not form a planar subdivision yields a MeshBuildError; every
// other outcome, including unfoldable patterns, is reported in the result.
func (f *Folder) Compute(ctx context.Context, cp model.CreasePattern) (*ComputationResult, error) {
	eps := f.Settings.PointEps
	models, err := mesh.Build(f.PrepareLines(cp), eps)
	if err != nil {
		return nil, fmt.Errorf("failed to build mesh: %w", err)
	}

	pool := parallel.NewWorkerPool(f.Settings.Workers)
	defer pool.Close()

	checker := foldability.NewChecker(f.Settings)
	res := &ComputationResult{LocallyFlatFoldable: true}
	for _, m := range models {
		mr := ModelResult{Model: m, Check: checker.Check(m)}
		if !mr.Check.OK {
			res.LocallyFlatFoldable = false
		}
		res.Models = append(res.Models, mr)
	}

	// One failing piece skips the search for every piece; all are folded by
	// shape only.
	if !res.LocallyFlatFoldable {
		for i := range res.Models {
			fold.ApplyWithoutLineType(res.Models[i].Model)
			res.Models[i].SearchSkipped = res.Models[i].Check.OK
		}
	} else {
		for i := range res.Models {
			if err := f.solveModel(ctx, pool, &res.Models[i]); err != nil {
				return nil, fmt.Errorf("failed to solve model %d: %w", i, err)
			}
		}
	}

	if res.LocallyFlatFoldable {
		for _, mr := range res.Models {
			c := mr.Count()
			if res.FoldablePatternCount > math.MaxInt64-c {
				res.FoldablePatternCount = math.MaxInt64
				break
			}
			res.FoldablePatternCount += c
		}
	} else {
		res.FoldablePatternCount = NotFoldable
	}

	logging.Logger().Info("crease pattern computed",
		"models", len(res.Models),
		"locally_flat_foldable", res.LocallyFlatFoldable,
		"count", res.FoldablePatternCount,
		"status", res.Status())
	return res, nil
}

func (f *Folder) solveModel(ctx context.Context, pool *parallel.WorkerPool, mr *ModelResult) error {
	eps := f.Settings.PointEps
	m := mr.Model
	if err := fold.Apply(m, eps); err != nil {
		if !errors.Is(err, fold.ErrInconsistentFold) {
			return err
		}
		mr.FoldError = err.Error()
		fold.ApplyWithoutLineType(m)
		return nil
	}

	sub, err := subface.Analyze(ctx, m, subface.Options{Eps: eps, Pool: pool})
	if err != nil {
		return err
	}
	mr.SubFaces = sub

	opts := layer.OptionsFromSettings(f.Settings)
	opts.Pool = pool
	mr.Stacking = layer.Solve(ctx, layer.NewProblem(m, sub, eps), opts)
	return nil
}
