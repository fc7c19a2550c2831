package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CodePattern is the trainset identity format required by spec.md §3.
var CodePattern = regexp.MustCompile(`^TS-\d{2}$`)

// FitnessStatus carries the regulatory fitness certificate for a train.
type FitnessStatus struct {
	Valid          bool       `gorm:"column:fitness_valid;not null;default:false" json:"valid"`
	Expiry         time.Time  `gorm:"column:fitness_expiry" json:"expiry"`
	LastInspection *time.Time `gorm:"column:fitness_last_inspection" json:"lastInspection,omitempty"`
}

// MaintenanceInfo carries the trainset's maintenance lifecycle state.
type MaintenanceInfo struct {
	Status             MaintenanceStatus `gorm:"column:maintenance_status;not null;default:'OPERATIONAL'" json:"status"`
	LastMaintenance    *time.Time        `gorm:"column:last_maintenance" json:"lastMaintenance,omitempty"`
	NextMaintenanceDue *time.Time        `gorm:"column:next_maintenance_due" json:"nextMaintenanceDue,omitempty"`
}

// CleaningInfo carries the trainset's cleaning lifecycle state.
type CleaningInfo struct {
	Status CleaningStatus `gorm:"column:cleaning_status;not null;default:'CLEAN'" json:"status"`
}

// BrandingInfo carries a trainset's branding/livery obligation.
type BrandingInfo struct {
	HasBranding bool   `gorm:"column:has_branding;not null;default:false" json:"hasBranding"`
	Campaign    string `gorm:"column:branding_campaign" json:"campaign,omitempty"`
	Priority    int    `gorm:"column:branding_priority;not null;default:1" json:"priority"`
}

// Telemetry carries optional upstream signals the Scorer and Alert
// Generator may use when present; all fields default to the documented
// "unused" value (0) per spec.md §9's design notes.
type Telemetry struct {
	PerformanceScore float64 `gorm:"column:performance_score;not null;default:0" json:"performanceScore"`
	ReliabilityScore float64 `gorm:"column:reliability_score;not null;default:0" json:"reliabilityScore"`
	OpenWorkOrders   int     `gorm:"column:open_work_orders;not null;default:0" json:"openWorkOrders"`
	RecentDelays     int     `gorm:"column:recent_delays;not null;default:0" json:"recentDelays"`
}

// Train is one physical trainset (spec.md §3).
type Train struct {
	ID   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code string    `gorm:"column:code;uniqueIndex;not null" json:"code"`

	Fitness     FitnessStatus   `gorm:"embedded" json:"fitness"`
	Maintenance MaintenanceInfo `gorm:"embedded" json:"maintenance"`
	Cleaning    CleaningInfo    `gorm:"embedded" json:"cleaning"`

	CurrentMileage        int64  `gorm:"column:current_mileage;not null;default:0" json:"currentMileage"`
	CurrentLocation       string `gorm:"column:current_location" json:"currentLocation"`
	AvailableForService   bool   `gorm:"column:available_for_service;not null;default:true" json:"availableForService"`
	TotalOperationalHours float64 `gorm:"column:total_operational_hours;not null;default:0" json:"totalOperationalHours"`

	Branding  BrandingInfo `gorm:"embedded" json:"branding"`
	Telemetry Telemetry    `gorm:"embedded" json:"telemetry"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Train) TableName() string { return "train" }

// ValidCode reports whether code matches the trainset identity format.
func ValidCode(code string) bool {
	return CodePattern.MatchString(code)
}
