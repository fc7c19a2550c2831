package alerts

import (
	"testing"
	"time"

	"github.com/kochimetro/induction-engine/internal/domain"
)

func withExpiry(code string, offsetDays int) domain.Train {
	return domain.Train{
		Code: code,
		Fitness: domain.FitnessStatus{
			Valid:  true,
			Expiry: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offsetDays),
		},
		Maintenance:          domain.MaintenanceInfo{Status: domain.MaintenanceOperational},
		AvailableForService:  true,
	}
}

func TestGenerate_FitnessExpiryScenario(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trains := []domain.Train{
		withExpiry("TS-04", 2),
		withExpiry("TS-05", 6),
		withExpiry("TS-06", -1),
	}
	got := Generate(trains, now)

	bySeverityAndCode := map[string]domain.Alert{}
	for _, a := range got {
		bySeverityAndCode[a.TrainCode] = a
	}

	a04 := bySeverityAndCode["TS-04"]
	if a04.Type != domain.AlertCritical || a04.Severity != 5 {
		t.Errorf("TS-04: expected CRITICAL severity 5, got %+v", a04)
	}
	a05 := bySeverityAndCode["TS-05"]
	if a05.Type != domain.AlertWarning || a05.Severity != 3 {
		t.Errorf("TS-05: expected WARNING severity 3, got %+v", a05)
	}
	a06 := bySeverityAndCode["TS-06"]
	if a06.Type != domain.AlertCritical || a06.Message != "TS-06 fitness certificate has expired" {
		t.Errorf("TS-06: expected expired CRITICAL alert, got %+v", a06)
	}
}

func TestGenerate_SortedBySeverityDescending(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trains := []domain.Train{
		withExpiry("TS-07", 6),  // WARNING severity 3
		withExpiry("TS-08", -1), // CRITICAL severity 5
	}
	got := Generate(trains, now)
	for i := 1; i < len(got); i++ {
		if got[i-1].Severity < got[i].Severity {
			t.Fatalf("alerts not sorted by severity descending: %+v", got)
		}
	}
}

func TestGenerate_ZeroAlertsOnCleanFleet(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trains := []domain.Train{withExpiry("TS-01", 365)}
	got := Generate(trains, now)
	if len(got) != 0 {
		t.Fatalf("expected zero alerts, got %+v", got)
	}
}

func TestGenerate_AvailabilityAlert(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := withExpiry("TS-09", 365)
	tr.AvailableForService = false
	got := Generate([]domain.Train{tr}, now)
	if len(got) != 1 || got[0].Type != domain.AlertInfo || got[0].Severity != 2 {
		t.Fatalf("expected single INFO severity 2 alert, got %+v", got)
	}
}
