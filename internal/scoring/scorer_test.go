package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/kochimetro/induction-engine/internal/constraints"
	"github.com/kochimetro/induction-engine/internal/domain"
)

func opTrain(code string, mileage int64, brandingPriority int, hasBranding bool) domain.Train {
	return domain.Train{
		Code: code,
		Fitness: domain.FitnessStatus{
			Valid:  true,
			Expiry: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		Maintenance: domain.MaintenanceInfo{
			Status: domain.MaintenanceOperational,
		},
		Cleaning:             domain.CleaningInfo{Status: domain.CleaningClean},
		CurrentMileage:       mileage,
		AvailableForService:  true,
		Branding: domain.BrandingInfo{
			HasBranding: hasBranding,
			Priority:    brandingPriority,
		},
	}
}

func TestScore_OptimalFleetScenario(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trains := []domain.Train{
		opTrain("TS-01", 5000, 3, true),
		opTrain("TS-02", 5200, 0, false),
		opTrain("TS-03", 4800, 5, true),
	}
	fc := FleetContext{MeanMileage: 5000, Now: now}

	results := map[string]Result{}
	for _, tr := range trains {
		results[tr.Code] = Score(constraints.Evaluate(tr, now), fc)
	}

	if results["TS-03"].Score <= results["TS-01"].Score {
		t.Fatalf("expected TS-03 to outscore TS-01: %+v vs %+v", results["TS-03"], results["TS-01"])
	}
	if results["TS-01"].Score <= results["TS-02"].Score {
		t.Fatalf("expected TS-01 to outscore TS-02: %+v vs %+v", results["TS-01"], results["TS-02"])
	}
	for code, r := range results {
		if r.Confidence < 80 {
			t.Errorf("%s: expected confidence >= 80, got %d", code, r.Confidence)
		}
	}

	if !strings.Contains(results["TS-03"].Reasoning, "Branding priority: 5/5") {
		t.Errorf("expected branding phrase in reasoning: %q", results["TS-03"].Reasoning)
	}
	if !strings.Contains(results["TS-01"].Reasoning, "Current mileage: 5,000km") {
		t.Errorf("expected mileage phrase in reasoning: %q", results["TS-01"].Reasoning)
	}
	if !strings.Contains(results["TS-01"].Reasoning, "Overall optimization score:") {
		t.Errorf("expected overall score phrase in reasoning: %q", results["TS-01"].Reasoning)
	}
}

func TestScore_ConfidenceClampedToBand(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	train := domain.Train{
		Code: "TS-09",
		Fitness: domain.FitnessStatus{
			Valid:  false,
			Expiry: now.AddDate(0, 0, -5),
		},
		Maintenance:          domain.MaintenanceInfo{Status: domain.MaintenanceInMaintenance},
		AvailableForService:  false,
	}
	r := Score(constraints.Evaluate(train, now), FleetContext{MeanMileage: 0, Now: now})
	if r.Confidence != 60 {
		t.Fatalf("expected weak-but-ranked confidence floor of 60, got %d", r.Confidence)
	}
}

func TestScore_DepotBalanceBonusOnlyWhenConfigured(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	train := opTrain("TS-05", 5000, 0, false)
	train.CurrentLocation = "Aluva"

	baseline := Score(constraints.Evaluate(train, now), FleetContext{MeanMileage: 5000, Now: now})

	withDepot := FleetContext{
		MeanMileage:   5000,
		Now:           now,
		DepotCapacity: map[string]int{"Aluva": 12},
	}.WithDepotOccupancy([]domain.Train{train})
	boosted := Score(constraints.Evaluate(train, now), withDepot)

	if boosted.Score <= baseline.Score {
		t.Fatalf("expected depot-balance bonus to raise score: baseline=%v boosted=%v", baseline.Score, boosted.Score)
	}
}
