package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kochimetro/induction-engine/internal/domain"
)

// AutoMigrateAll creates or updates every table the engine owns.
func AutoMigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&domain.Train{},
		&domain.InductionPlan{},
	)
}

// EnsurePlanIndexes creates supporting lookup indexes for the plan
// table. "One finalized plan per calendar date" is deliberately NOT a
// database constraint here: spec.md §4.6's forceRegenerate path appends
// a second FINALIZED plan for an already-planned date without deleting
// the first, so uniqueness is enforced only at the Plan Service layer
// (planlock.Locker plus a FindFinalizedByDate check), not the schema.
func EnsurePlanIndexes(gdb *gorm.DB) error {
	if err := gdb.Exec(`
		CREATE INDEX IF NOT EXISTS idx_induction_plan_date_status
		ON induction_plan (plan_date, status);
	`).Error; err != nil {
		return fmt.Errorf("create idx_induction_plan_date_status: %w", err)
	}
	if err := gdb.Exec(`
		CREATE INDEX IF NOT EXISTS idx_induction_plan_date_generated
		ON induction_plan (plan_date, generated_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_induction_plan_date_generated: %w", err)
	}
	return nil
}

// AutoMigrateAll runs table migration followed by index creation against
// the service's own connection.
func (s *Service) AutoMigrateAll() error {
	s.log.Info("auto migrating postgres tables")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("auto migration failed", "error", err)
		return err
	}
	if err := EnsurePlanIndexes(s.db); err != nil {
		s.log.Error("plan index migration failed", "error", err)
		return err
	}
	return nil
}
