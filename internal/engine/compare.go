package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/CreaseStack/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.FoldSettings
}

// ComparisonResult holds the outcome of one scenario.
type ComparisonResult struct {
	Scenario ComparisonScenario
	Summary  model.ResultSummary
	Err      error // mesh build failure under this scenario's settings
}

// CompareScenarios computes the crease pattern under every scenario, in
// scenario order. This shows how tolerances and search options change the
// outcome for the same pattern.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, cp model.CreasePattern) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		res, err := New(scenario.Settings).Compute(ctx, cp)
		r := ComparisonResult{Scenario: scenario, Err: err}
		if err == nil {
			r.Summary = res.Summary()
		} else {
			r.Summary = model.ResultSummary{FoldablePatternCount: NotFoldable, Status: "mesh error"}
		}
		results = append(results, r)
	}

	return results
}

// BuildDefaultScenarios generates what-if variations of the current settings.
func BuildDefaultScenarios(baseSettings model.FoldSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	// Scenario: flip between first solution and full enumeration
	alt := baseSettings
	alt.FullEstimation = !baseSettings.FullEstimation
	name := "Full Estimation"
	if !alt.FullEstimation {
		name = "First Solution Only"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Settings: alt})

	// Scenario: looser point tolerance
	loose := baseSettings
	loose.PointEps = baseSettings.PointEps * 10
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Point Tolerance %g", loose.PointEps),
		Settings: loose,
	})

	// Scenario: skip the angle sum check
	if baseSettings.CheckKawasaki {
		noKawasaki := baseSettings
		noKawasaki.CheckKawasaki = false
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Without Kawasaki",
			Settings: noKawasaki,
		})
	}

	// Scenario: no line normalisation
	if baseSettings.NormalizeLines {
		raw := baseSettings
		raw.NormalizeLines = false
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Lines As Drawn",
			Settings: raw,
		})
	}

	return scenarios
}
