// Package scoring implements the Scorer: a pure function from a train's
// evaluated constraint state plus fleet-wide context to a numeric score,
// a reproducible human-readable reasoning trace, and a clamped
// confidence percentage (spec.md §4.2).
package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kochimetro/induction-engine/internal/constraints"
	"github.com/kochimetro/induction-engine/internal/domain"
)

// FleetContext carries the candidate-pool-wide figures the Scorer needs.
type FleetContext struct {
	MeanMileage float64
	Now         time.Time

	// DepotCapacity is optional: when non-nil, trains stabled at a known
	// depot operating below 80% of its configured capacity earn a small
	// depot-balance bonus (SPEC_FULL §4.2 ADDED). Nil disables the term
	// entirely, reproducing spec.md's formula exactly.
	DepotCapacity map[string]int
	depotCount    map[string]int
}

// WithDepotOccupancy precomputes per-depot occupancy counts from the
// candidate pool so the depot-balance term can be evaluated per train
// without re-scanning the pool each time.
func (fc FleetContext) WithDepotOccupancy(pool []domain.Train) FleetContext {
	if fc.DepotCapacity == nil {
		return fc
	}
	counts := make(map[string]int, len(fc.DepotCapacity))
	for _, t := range pool {
		counts[t.CurrentLocation]++
	}
	fc.depotCount = counts
	return fc
}

// Result is the Scorer's output for one train.
type Result struct {
	Score      float64
	Reasoning  string
	Confidence int
}

// Score computes the weighted score and reasoning trace for one
// evaluated train within fleet context fc.
func Score(e constraints.Evaluated, fc FleetContext) Result {
	var score float64
	var phrases []string

	if e.FitnessValid {
		score += 30
		phrases = append(phrases, "Valid fitness certificate")
	}

	if e.Train.Maintenance.Status == domain.MaintenanceOperational {
		score += 25
		note := "Operational status"
		if !e.MaintenanceDue {
			score += 10
			note = "Operational status; no maintenance due"
		}
		phrases = append(phrases, note)
	}

	mileageTerm := mileageBalanceTerm(float64(e.Train.CurrentMileage), fc.MeanMileage)
	if mileageTerm > 0 {
		score += mileageTerm
		phrases = append(phrases, fmt.Sprintf("Current mileage: %skm", formatThousands(e.Train.CurrentMileage)))
	}

	if e.Train.Branding.HasBranding {
		bonus := 2 * float64(e.Train.Branding.Priority)
		score += bonus
		phrases = append(phrases, fmt.Sprintf("Branding priority: %d/5", e.Train.Branding.Priority))
	}

	if e.Train.Telemetry.PerformanceScore > 0 {
		score += 0.1 * e.Train.Telemetry.PerformanceScore
		phrases = append(phrases, fmt.Sprintf("Performance score: %.1f", e.Train.Telemetry.PerformanceScore))
	}
	if e.Train.Telemetry.ReliabilityScore > 0 {
		score += 0.1 * e.Train.Telemetry.ReliabilityScore
		phrases = append(phrases, fmt.Sprintf("Reliability score: %.1f", e.Train.Telemetry.ReliabilityScore))
	}

	if e.Train.Cleaning.Status == domain.CleaningClean {
		score += 5
		phrases = append(phrases, "Clean and ready for service")
	}

	if depotBonus, ok := depotBalanceTerm(e.Train.CurrentLocation, fc); ok {
		score += depotBonus
		phrases = append(phrases, fmt.Sprintf("Operating from under-utilized depot: %s", e.Train.CurrentLocation))
	}

	phrases = append(phrases, fmt.Sprintf("Overall optimization score: %d", int(math.Round(score))))

	return Result{
		Score:      score,
		Reasoning:  strings.Join(phrases, "; "),
		Confidence: confidenceFromScore(score),
	}
}

func mileageBalanceTerm(mileage, meanMileage float64) float64 {
	term := 15 - math.Abs(mileage-meanMileage)/1000
	if term < 0 {
		return 0
	}
	return term
}

// depotBalanceTerm is the SPEC_FULL §4.2 ADDED depot-balance bonus: it
// only fires when fc carries a depot capacity table and the train's
// location is a registered depot running under 80% occupancy.
func depotBalanceTerm(location string, fc FleetContext) (float64, bool) {
	if fc.DepotCapacity == nil || location == "" {
		return 0, false
	}
	capacity, known := fc.DepotCapacity[location]
	if !known || capacity <= 0 {
		return 0, false
	}
	occupied := fc.depotCount[location]
	if float64(occupied) < 0.8*float64(capacity) {
		return 3, true
	}
	return 0, false
}

func confidenceFromScore(score float64) int {
	c := int(math.Round(score))
	if c < 60 {
		return 60
	}
	if c > 100 {
		return 100
	}
	return c
}

// formatThousands renders n with comma thousands separators, e.g. 4850
// -> "4,850", matching the reasoning phrasing spec.md §4.2 requires.
func formatThousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
