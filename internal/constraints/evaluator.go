// Package constraints implements the Constraint Evaluator: a pure
// function from a single Train plus a reference timestamp to the
// derived booleans and buckets spec.md §4.1 defines. It performs no I/O
// and never raises — every input, however degenerate, yields a
// well-formed Evaluated record.
package constraints

import (
	"time"

	"github.com/kochimetro/induction-engine/internal/domain"
)

const daySeconds = 86400

// Evaluated is the derived-state record for one train at a point in time.
type Evaluated struct {
	Train domain.Train

	FitnessValid       bool
	DaysToExpiry       int64
	MaintenanceDue      bool
	MaintenanceReady    bool
	MaintenanceUrgency  domain.MaintenanceUrgency
	CleaningReady       bool
	HardEligible        bool
}

// Evaluate derives the constraint state of train as of now.
func Evaluate(train domain.Train, now time.Time) Evaluated {
	fitnessValid := train.Fitness.Valid && train.Fitness.Expiry.After(now)
	daysToExpiry := floorDiv(int64(train.Fitness.Expiry.Sub(now).Seconds()), daySeconds)

	maintenanceDue := train.Maintenance.Status == domain.MaintenanceDue
	if train.Maintenance.NextMaintenanceDue != nil && !train.Maintenance.NextMaintenanceDue.After(now) {
		maintenanceDue = true
	}

	maintenanceReady := train.Maintenance.Status == domain.MaintenanceOperational && !maintenanceDue

	urgency := maintenanceUrgency(train, now)
	cleaningReady := train.Cleaning.Status == domain.CleaningClean
	hardEligible := fitnessValid && train.Maintenance.Status == domain.MaintenanceOperational && train.AvailableForService

	return Evaluated{
		Train:              train,
		FitnessValid:       fitnessValid,
		DaysToExpiry:       daysToExpiry,
		MaintenanceDue:     maintenanceDue,
		MaintenanceReady:   maintenanceReady,
		MaintenanceUrgency: urgency,
		CleaningReady:      cleaningReady,
		HardEligible:       hardEligible,
	}
}

// maintenanceUrgency buckets days-until-due per spec.md §3's thresholds.
// A train with no scheduled next-due date is treated as LOW urgency.
func maintenanceUrgency(train domain.Train, now time.Time) domain.MaintenanceUrgency {
	if train.Maintenance.NextMaintenanceDue == nil {
		return domain.UrgencyLow
	}
	daysUntilDue := floorDiv(int64(train.Maintenance.NextMaintenanceDue.Sub(now).Seconds()), daySeconds)
	switch {
	case daysUntilDue <= 0:
		return domain.UrgencyCritical
	case daysUntilDue <= 3:
		return domain.UrgencyHigh
	case daysUntilDue <= 7:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// floorDiv divides a by b rounding toward negative infinity, matching
// spec.md's floor((expiry-now)/86400s) for negative (expired) durations.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
