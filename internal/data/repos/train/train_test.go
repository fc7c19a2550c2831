package train

import (
	"context"
	"testing"
	"time"

	"github.com/kochimetro/induction-engine/internal/data/repos/testutil"
	"github.com/kochimetro/induction-engine/internal/domain"
	"github.com/kochimetro/induction-engine/internal/platform/apperr"
)

func TestTrainRepository(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	repo := New(gdb, testutil.Logger(t))

	original := &domain.Train{
		Code: "TS-21",
		Fitness: domain.FitnessStatus{
			Valid:  true,
			Expiry: time.Now().AddDate(0, 0, 30),
		},
		Maintenance:         domain.MaintenanceInfo{Status: domain.MaintenanceOperational},
		Cleaning:            domain.CleaningInfo{Status: domain.CleaningClean},
		CurrentMileage:      1000,
		AvailableForService: true,
	}
	if err := repo.Upsert(ctx, tx, original); err != nil {
		t.Fatalf("Upsert (insert): %v", err)
	}
	if original.ID.String() == "" {
		t.Fatalf("expected generated ID after insert")
	}

	got, err := repo.FindByCode(ctx, tx, "TS-21")
	if err != nil {
		t.Fatalf("FindByCode: %v", err)
	}
	if got.CurrentMileage != 1000 {
		t.Fatalf("expected mileage 1000, got %d", got.CurrentMileage)
	}

	original.CurrentMileage = 2500
	if err := repo.Upsert(ctx, tx, original); err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}
	gotAgain, err := repo.FindByCode(ctx, tx, "TS-21")
	if err != nil {
		t.Fatalf("FindByCode after update: %v", err)
	}
	if gotAgain.CurrentMileage != 2500 {
		t.Fatalf("expected updated mileage 2500, got %d", gotAgain.CurrentMileage)
	}
	if gotAgain.ID != original.ID {
		t.Fatalf("expected upsert to keep the same id, got %s vs %s", gotAgain.ID, original.ID)
	}

	all, err := repo.ListAll(ctx, tx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) == 0 {
		t.Fatalf("expected at least one train in ListAll")
	}

	if err := repo.Delete(ctx, tx, original.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, tx, original.ID); !apperr.IsCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected CodeNotFound after delete, got %v", err)
	}
}
