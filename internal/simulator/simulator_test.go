package simulator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kochimetro/induction-engine/internal/alerts"
	"github.com/kochimetro/induction-engine/internal/domain"
	"github.com/kochimetro/induction-engine/internal/optimizer"
)

func simTrain(code string, mileage int64, brandingPriority int, hasBranding bool) domain.Train {
	return domain.Train{
		ID:   uuid.New(),
		Code: code,
		Fitness: domain.FitnessStatus{
			Valid:  true,
			Expiry: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		Maintenance:         domain.MaintenanceInfo{Status: domain.MaintenanceOperational},
		Cleaning:            domain.CleaningInfo{Status: domain.CleaningClean},
		CurrentMileage:      mileage,
		AvailableForService: true,
		Branding: domain.BrandingInfo{
			HasBranding: hasBranding,
			Priority:    brandingPriority,
		},
	}
}

func TestSimulate_BrandingOverridePromotesTargetToRankOne(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trains := []domain.Train{
		simTrain("TS-01", 5000, 3, true),
		simTrain("TS-02", 5200, 0, false),
		simTrain("TS-03", 4800, 5, true),
	}

	baseline := optimizer.Run(optimizer.Input{Trains: trains, Now: now})
	if baseline.RankedTrains[0].TrainRef.Code != "TS-03" {
		t.Fatalf("expected baseline rank 1 to be TS-03, got %s", baseline.RankedTrains[0].TrainRef.Code)
	}

	out, err := Simulate(trains, "TS-02", map[string]interface{}{
		"branding": map[string]interface{}{
			"hasBranding": true,
			"priority":    10,
		},
	}, optimizer.Constraints{}, now, alerts.Generate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.RankedTrains[0].TrainRef.Code != "TS-02" {
		t.Fatalf("expected TS-02 promoted to rank 1, got %s", out.RankedTrains[0].TrainRef.Code)
	}
	if out.ImpactAnalysis.NewRank == nil || *out.ImpactAnalysis.NewRank != 1 {
		t.Fatalf("expected impact analysis newRank=1, got %+v", out.ImpactAnalysis)
	}
	if out.ImpactAnalysis.AffectedTrains != 3 {
		t.Fatalf("expected affectedTrains=3, got %d", out.ImpactAnalysis.AffectedTrains)
	}
	if out.SimulationParams.TargetTrain.Code != "TS-02" {
		t.Fatalf("expected simulation params to record TS-02 as target, got %+v", out.SimulationParams.TargetTrain)
	}
}

func TestSimulate_TargetNotFound(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trains := []domain.Train{simTrain("TS-01", 5000, 0, false)}

	_, err := Simulate(trains, "TS-99", nil, optimizer.Constraints{}, now, alerts.Generate, nil)
	if err == nil {
		t.Fatal("expected error for unknown target train")
	}
	var notFound *ErrTargetNotFound
	if _, ok := err.(*ErrTargetNotFound); !ok {
		_ = notFound
		t.Fatalf("expected *ErrTargetNotFound, got %T", err)
	}
}

func TestSimulate_NestedModificationsMergeFieldWise(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trains := []domain.Train{
		simTrain("TS-01", 5000, 3, true),
		simTrain("TS-02", 5200, 0, false),
	}

	out, err := Simulate(trains, "TS-01", map[string]interface{}{
		"maintenance": map[string]interface{}{
			"status": string(domain.MaintenanceDue),
		},
	}, optimizer.Constraints{}, now, alerts.Generate, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, r := range out.RankedTrains {
		if r.TrainRef.Code == "TS-01" {
			t.Fatalf("expected TS-01 excluded by hard filter after maintenance override, got ranked: %+v", out.RankedTrains)
		}
	}
	var sawMaintenanceAlert bool
	for _, a := range out.Alerts {
		if a.TrainCode == "TS-01" {
			sawMaintenanceAlert = true
		}
	}
	if !sawMaintenanceAlert {
		t.Fatalf("expected a maintenance alert for TS-01 on the modified set, got %+v", out.Alerts)
	}
}
