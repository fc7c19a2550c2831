// Package simulator implements the Simulator: it applies a hypothetical
// modification to one train's state, reruns the Optimizer against the
// modified fleet, and reports the ranking impact on that train
// (spec.md §4.5). It never persists anything.
package simulator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kochimetro/induction-engine/internal/domain"
	"github.com/kochimetro/induction-engine/internal/optimizer"
)

// ErrTargetNotFound is returned when targetRef matches no train in the
// input set.
type ErrTargetNotFound struct{ Ref string }

func (e *ErrTargetNotFound) Error() string { return fmt.Sprintf("train %q not found", e.Ref) }

// ImpactAnalysis summarizes what the modification did to the target's
// ranking position.
type ImpactAnalysis struct {
	NewRank        *int   `json:"newRank"`
	RankChange     string `json:"rankChange"`
	AffectedTrains int    `json:"affectedTrains"`
}

// Output is the transient, non-persisted result of one simulation.
type Output struct {
	RankedTrains     []domain.RankedEntry
	Alerts           []domain.Alert
	Metrics          domain.OptimizationMetrics
	ModelInfo        domain.AIModelInfo
	SimulationParams domain.SimulationParams
	ImpactAnalysis   ImpactAnalysis
}

// GenerateAlerts is injected by the caller so this package stays free of
// a dependency on the alerts package's concrete Generate signature if a
// caller wants to substitute it; the Plan Service always passes
// alerts.Generate.
type GenerateAlerts func(trains []domain.Train, now time.Time) []domain.Alert

// Simulate locates targetRef (by code or stable id) in trains, applies
// modifications as a deep field-wise merge, reruns the Optimizer on the
// modified set, and reports the impact on the target's rank.
func Simulate(trains []domain.Train, targetRef string, modifications map[string]interface{}, c optimizer.Constraints, now time.Time, genAlerts GenerateAlerts, depotCapacity map[string]int) (Output, error) {
	idx := findTarget(trains, targetRef)
	if idx < 0 {
		return Output{}, &ErrTargetNotFound{Ref: targetRef}
	}

	modified := make([]domain.Train, len(trains))
	copy(modified, trains)
	patched, err := applyModifications(trains[idx], modifications)
	if err != nil {
		return Output{}, fmt.Errorf("apply modifications: %w", err)
	}
	modified[idx] = patched

	result := optimizer.Run(optimizer.Input{
		Trains:        modified,
		Constraints:   c,
		Now:           now,
		DepotCapacity: depotCapacity,
	})

	var genAlertsOut []domain.Alert
	if genAlerts != nil {
		genAlertsOut = genAlerts(modified, now)
	}

	impact := buildImpact(result.RankedTrains, patched.Code)

	targetRefOut := domain.TrainRef{ID: patched.ID, Code: patched.Code}

	return Output{
		RankedTrains:     result.RankedTrains,
		Alerts:           genAlertsOut,
		Metrics:          result.Metrics,
		ModelInfo:        result.ModelInfo,
		SimulationParams: domain.SimulationParams{TargetTrain: targetRefOut, Modifications: modifications},
		ImpactAnalysis:   impact,
	}, nil
}

func findTarget(trains []domain.Train, ref string) int {
	for i, t := range trains {
		if t.Code == ref || t.ID.String() == ref {
			return i
		}
	}
	return -1
}

func buildImpact(ranked []domain.RankedEntry, targetCode string) ImpactAnalysis {
	for _, r := range ranked {
		if r.TrainRef.Code == targetCode {
			rank := r.Rank
			return ImpactAnalysis{
				NewRank:        &rank,
				RankChange:     fmt.Sprintf("Moved to rank %d", rank),
				AffectedTrains: len(ranked),
			}
		}
	}
	return ImpactAnalysis{
		NewRank:        nil,
		RankChange:     "Not in top rankings",
		AffectedTrains: len(ranked),
	}
}

// applyModifications deep-merges modifications onto a JSON projection of
// train and decodes the result back into a domain.Train. Nested objects
// (fitness, maintenance, cleaning, branding, telemetry) are merged
// field-wise; any other key is overwritten wholesale, matching spec.md
// §4.5's "shallow merge... nested records merged field-wise".
func applyModifications(train domain.Train, modifications map[string]interface{}) (domain.Train, error) {
	if len(modifications) == 0 {
		return train, nil
	}

	raw, err := json.Marshal(train)
	if err != nil {
		return domain.Train{}, err
	}
	var base map[string]interface{}
	if err := json.Unmarshal(raw, &base); err != nil {
		return domain.Train{}, err
	}

	merged := deepMerge(base, modifications)

	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return domain.Train{}, err
	}
	var out domain.Train
	if err := json.Unmarshal(mergedJSON, &out); err != nil {
		return domain.Train{}, err
	}
	return out, nil
}

func deepMerge(base, overlay map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, ov := range overlay {
		if baseVal, ok := out[k]; ok {
			baseMap, baseIsMap := baseVal.(map[string]interface{})
			ovMap, ovIsMap := ov.(map[string]interface{})
			if baseIsMap && ovIsMap {
				out[k] = deepMerge(baseMap, ovMap)
				continue
			}
		}
		out[k] = ov
	}
	return out
}
