// Package optimizer implements the local Optimizer: it filters a fleet
// to hard-eligible candidates, scores and ranks them deterministically,
// and packages the result with explainability metadata (spec.md §4.3).
// It is the fallback path the External Optimizer Adapter invokes when
// the upstream optimizer is unreachable, and the only path when no
// upstream is configured.
package optimizer

import (
	"context"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochimetro/induction-engine/internal/constraints"
	"github.com/kochimetro/induction-engine/internal/domain"
	"github.com/kochimetro/induction-engine/internal/scoring"
)

// Algorithm and Version identify the local fallback path's output in
// aiModelInfo (spec.md §4.3, §8's fallback-transparency law).
const (
	Algorithm = "Rule-Based Weighted Scoring"
	Version   = "1.0-fallback"
)

// Constraints is intentionally opaque beyond Weights: spec.md §9 reserves
// caller-supplied weighting for future use and defines today's behavior
// as identical to supplying none.
type Constraints struct {
	Weights map[string]float64 `json:"weights,omitempty"`
}

// Input is everything the Optimizer needs for one run.
type Input struct {
	Trains      []domain.Train
	Constraints Constraints
	Now         time.Time

	// DepotCapacity optionally enables the depot-balance scoring term
	// (SPEC_FULL §4.2 ADDED); nil reproduces spec.md's formula exactly.
	DepotCapacity map[string]int
}

// Output is the packaged result of one run.
type Output struct {
	RankedTrains []domain.RankedEntry
	Metrics      domain.OptimizationMetrics
	ModelInfo    domain.AIModelInfo
}

// Run executes the filter → score → rank → package pipeline. It never
// errors: an empty or fully-ineligible fleet yields an empty ranking.
func Run(in Input) Output {
	start := time.Now()

	evaluated := make([]constraints.Evaluated, 0, len(in.Trains))
	for _, tr := range in.Trains {
		evaluated = append(evaluated, constraints.Evaluate(tr, in.Now))
	}

	candidates := make([]constraints.Evaluated, 0, len(evaluated))
	for _, e := range evaluated {
		if e.HardEligible {
			candidates = append(candidates, e)
		}
	}

	if len(candidates) == 0 {
		return Output{
			RankedTrains: nil,
			Metrics: domain.OptimizationMetrics{
				TotalTrainsEvaluated: len(in.Trains),
				ConstraintsSatisfied: 0,
				AverageConfidence:    0,
				ProcessingTimeMs:     time.Since(start).Milliseconds(),
			},
			ModelInfo: modelInfo(in.Constraints),
		}
	}

	fc := scoring.FleetContext{
		MeanMileage:   meanMileage(candidates),
		Now:           in.Now,
		DepotCapacity: in.DepotCapacity,
	}
	if fc.DepotCapacity != nil {
		pool := make([]domain.Train, 0, len(candidates))
		for _, c := range candidates {
			pool = append(pool, c.Train)
		}
		fc = fc.WithDepotOccupancy(pool)
	}

	scored := scoreConcurrently(candidates, fc)

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].result.Score != scored[j].result.Score {
			return scored[i].result.Score > scored[j].result.Score
		}
		return scored[i].eval.Train.Code < scored[j].eval.Train.Code
	})

	ranked := make([]domain.RankedEntry, 0, len(scored))
	var confidenceSum int
	for i, s := range scored {
		entry := domain.RankedEntry{
			TrainRef: domain.TrainRef{
				ID:   s.eval.Train.ID,
				Code: s.eval.Train.Code,
			},
			Rank:            i + 1,
			Reasoning:       s.result.Reasoning,
			ConfidenceScore: s.result.Confidence,
			Constraints: domain.ConstraintAttribution{
				FitnessValid:     s.eval.FitnessValid,
				MaintenanceReady: s.eval.MaintenanceReady,
				CleaningStatus:   s.eval.Train.Cleaning.Status,
				BrandingPriority: s.eval.Train.Branding.Priority,
				MileageBalance:   float64(s.eval.Train.CurrentMileage) - fc.MeanMileage,
			},
		}
		ranked = append(ranked, entry)
		confidenceSum += s.result.Confidence
	}

	return Output{
		RankedTrains: ranked,
		Metrics: domain.OptimizationMetrics{
			TotalTrainsEvaluated: len(in.Trains),
			ConstraintsSatisfied: len(ranked),
			AverageConfidence:    float64(confidenceSum) / float64(len(ranked)),
			ProcessingTimeMs:     time.Since(start).Milliseconds(),
		},
		ModelInfo: modelInfo(in.Constraints),
	}
}

func modelInfo(c Constraints) domain.AIModelInfo {
	var params map[string]interface{}
	if len(c.Weights) > 0 {
		params = map[string]interface{}{"weights": c.Weights}
	}
	return domain.AIModelInfo{
		Version:    Version,
		Algorithm:  Algorithm,
		Parameters: params,
	}
}

func meanMileage(evaluated []constraints.Evaluated) float64 {
	if len(evaluated) == 0 {
		return 0
	}
	var sum int64
	for _, e := range evaluated {
		sum += e.Train.CurrentMileage
	}
	return float64(sum) / float64(len(evaluated))
}

type scoredCandidate struct {
	eval   constraints.Evaluated
	result scoring.Result
}

// scoreConcurrently scores every candidate, fanned out across a worker
// pool bounded by GOMAXPROCS. Scoring is a pure function of (train,
// fleet context), so concurrency changes only wall-clock; the
// subsequent deterministic sort makes the final ranking independent of
// scheduling order (spec.md §5).
func scoreConcurrently(candidates []constraints.Evaluated, fc scoring.FleetContext) []scoredCandidate {
	out := make([]scoredCandidate, len(candidates))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(candidates) {
		workers = len(candidates)
	}
	if workers < 1 {
		workers = 1
	}

	eg, _ := errgroup.WithContext(context.Background())
	eg.SetLimit(workers)
	for i := range candidates {
		i := i
		eg.Go(func() error {
			out[i] = scoredCandidate{
				eval:   candidates[i],
				result: scoring.Score(candidates[i], fc),
			}
			return nil
		})
	}
	_ = eg.Wait()

	return out
}
