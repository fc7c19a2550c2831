package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TrainRef is a weak reference to a Train: a plan never owns the train it
// ranks, only its stable identifier and the code observed at generation
// time. Resolution at read time tolerates the train having been deleted
// (spec.md §3 "Ownership").
type TrainRef struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

// ConstraintAttribution is the per-entry explainability payload: which
// constraints this train satisfied and how its mileage compared to the
// fleet mean, surfaced verbatim on /explain.
type ConstraintAttribution struct {
	FitnessValid     bool           `json:"fitnessValid"`
	MaintenanceReady bool           `json:"maintenanceReady"`
	CleaningStatus   CleaningStatus `json:"cleaningStatus"`
	BrandingPriority int            `json:"brandingPriority"`
	MileageBalance   float64        `json:"mileageBalance"`
}

// RankedEntry is one trainset's position in a plan's ranking.
type RankedEntry struct {
	TrainRef        TrainRef              `json:"trainRef"`
	Rank            int                   `json:"rank"`
	Reasoning       string                `json:"reasoning"`
	ConfidenceScore int                   `json:"confidenceScore"`
	Constraints     ConstraintAttribution `json:"constraints"`
}

// Alert is a severity-graded notice independent of ranking.
type Alert struct {
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	TrainCode string    `json:"trainCode"`
	Severity  int       `json:"severity"`
}

// OptimizationMetrics summarizes one optimizer run.
type OptimizationMetrics struct {
	TotalTrainsEvaluated int     `json:"totalTrainsEvaluated"`
	ConstraintsSatisfied int     `json:"constraintsSatisfied"`
	AverageConfidence    float64 `json:"averageConfidence"`
	ProcessingTimeMs     int64   `json:"processingTimeMs"`
}

// AIModelInfo identifies which algorithm produced a plan.
type AIModelInfo struct {
	Version    string                 `json:"version"`
	Algorithm  string                 `json:"algorithm"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// SimulationParams records the hypothetical modification a SIMULATION
// plan was generated from.
type SimulationParams struct {
	TargetTrain   TrainRef               `json:"targetTrain"`
	Modifications map[string]interface{} `json:"modifications"`
}

// InductionPlan is an immutable record of one planning decision
// (spec.md §3). Ranked entries and alerts are value-composed into JSON
// columns rather than child tables: a plan exclusively owns them and
// they are never queried independently of their parent plan.
type InductionPlan struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PlanDate    time.Time  `gorm:"column:plan_date;type:date;not null" json:"planDate"`
	GeneratedAt time.Time  `gorm:"column:generated_at;not null" json:"generatedAt"`
	Status      PlanStatus `gorm:"column:status;not null;index:idx_plan_date_finalized,priority:2" json:"status"`

	RankedTrains        datatypes.JSON `gorm:"column:ranked_trains;type:jsonb;not null;default:'[]'" json:"rankedTrains"`
	Alerts              datatypes.JSON `gorm:"column:alerts;type:jsonb;not null;default:'[]'" json:"alerts"`
	OptimizationMetrics datatypes.JSON `gorm:"column:optimization_metrics;type:jsonb;not null;default:'{}'" json:"optimizationMetrics"`
	SimulationParams    datatypes.JSON `gorm:"column:simulation_params;type:jsonb" json:"simulationParams,omitempty"`
	AIModelInfo         datatypes.JSON `gorm:"column:ai_model_info;type:jsonb;not null;default:'{}'" json:"aiModelInfo"`

	GeneratedBy string `gorm:"column:generated_by;not null" json:"generatedBy"`

	CreatedAt time.Time `json:"createdAt"`
}

func (InductionPlan) TableName() string { return "induction_plan" }

// SetRankedTrains marshals entries into the plan's jsonb column.
func (p *InductionPlan) SetRankedTrains(entries []RankedEntry) { p.RankedTrains = toJSON(entries) }

// SetAlerts marshals alerts into the plan's jsonb column.
func (p *InductionPlan) SetAlerts(alerts []Alert) { p.Alerts = toJSON(alerts) }

// SetOptimizationMetrics marshals metrics into the plan's jsonb column.
func (p *InductionPlan) SetOptimizationMetrics(m OptimizationMetrics) { p.OptimizationMetrics = toJSON(m) }

// SetAIModelInfo marshals model info into the plan's jsonb column.
func (p *InductionPlan) SetAIModelInfo(m AIModelInfo) { p.AIModelInfo = toJSON(m) }

// SetSimulationParams marshals simulation params into the plan's jsonb
// column, or clears it when sp is nil.
func (p *InductionPlan) SetSimulationParams(sp *SimulationParams) {
	if sp == nil {
		p.SimulationParams = nil
		return
	}
	p.SimulationParams = toJSON(sp)
}

func (p *InductionPlan) GetRankedTrains() []RankedEntry {
	var entries []RankedEntry
	_ = json.Unmarshal(p.RankedTrains, &entries)
	return entries
}

func (p *InductionPlan) GetAlerts() []Alert {
	var alerts []Alert
	_ = json.Unmarshal(p.Alerts, &alerts)
	return alerts
}

func (p *InductionPlan) GetOptimizationMetrics() OptimizationMetrics {
	var m OptimizationMetrics
	_ = json.Unmarshal(p.OptimizationMetrics, &m)
	return m
}

func (p *InductionPlan) GetAIModelInfo() AIModelInfo {
	var m AIModelInfo
	_ = json.Unmarshal(p.AIModelInfo, &m)
	return m
}

func (p *InductionPlan) GetSimulationParams() *SimulationParams {
	if len(p.SimulationParams) == 0 {
		return nil
	}
	var sp SimulationParams
	if err := json.Unmarshal(p.SimulationParams, &sp); err != nil {
		return nil
	}
	return &sp
}
