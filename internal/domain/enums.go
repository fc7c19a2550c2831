package domain

// MaintenanceStatus is the trainset's current maintenance state.
type MaintenanceStatus string

const (
	MaintenanceOperational   MaintenanceStatus = "OPERATIONAL"
	MaintenanceDue           MaintenanceStatus = "MAINTENANCE_DUE"
	MaintenanceInMaintenance MaintenanceStatus = "IN_MAINTENANCE"
)

// CleaningStatus is the trainset's current cleaning state.
type CleaningStatus string

const (
	CleaningClean    CleaningStatus = "CLEAN"
	CleaningDue      CleaningStatus = "CLEANING_DUE"
	CleaningInClean  CleaningStatus = "IN_CLEANING"
)

// MaintenanceUrgency buckets days-until-due into an operator-facing label.
type MaintenanceUrgency string

const (
	UrgencyLow      MaintenanceUrgency = "LOW"
	UrgencyMedium   MaintenanceUrgency = "MEDIUM"
	UrgencyHigh     MaintenanceUrgency = "HIGH"
	UrgencyCritical MaintenanceUrgency = "CRITICAL"
)

// AlertType grades the severity class of an alert.
type AlertType string

const (
	AlertCritical AlertType = "CRITICAL"
	AlertWarning  AlertType = "WARNING"
	AlertInfo     AlertType = "INFO"
)

// PlanStatus is the lifecycle state of an InductionPlan.
type PlanStatus string

const (
	PlanDraft      PlanStatus = "DRAFT"
	PlanFinalized  PlanStatus = "FINALIZED"
	PlanSimulation PlanStatus = "SIMULATION"
)
