// Package planservice implements the Plan Service: the request-facing
// orchestration layer tying together trains, the External Optimizer
// Adapter, the Alert Generator, the Simulator, and the InductionPlan
// repository (spec.md §4.6).
package planservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kochimetro/induction-engine/internal/alerts"
	"github.com/kochimetro/induction-engine/internal/constraints"
	"github.com/kochimetro/induction-engine/internal/data/planlock"
	planrepo "github.com/kochimetro/induction-engine/internal/data/repos/plan"
	trainrepo "github.com/kochimetro/induction-engine/internal/data/repos/train"
	"github.com/kochimetro/induction-engine/internal/domain"
	"github.com/kochimetro/induction-engine/internal/optimizer"
	"github.com/kochimetro/induction-engine/internal/platform/apperr"
	"github.com/kochimetro/induction-engine/internal/platform/caller"
	"github.com/kochimetro/induction-engine/internal/platform/logger"
	"github.com/kochimetro/induction-engine/internal/platform/metrics"
	"github.com/kochimetro/induction-engine/internal/simulator"
)

// OptimizerRunner is satisfied by optimizeradapter.Adapter; the
// interface keeps this package free of an import cycle and lets tests
// substitute an in-memory implementation (spec.md §9's "external-service
// coupling" design note).
type OptimizerRunner interface {
	Run(ctx context.Context, in optimizer.Input) optimizer.Output
}

// Service implements every Plan Service operation.
type Service struct {
	trains    trainrepo.Repository
	plans     planrepo.Repository
	optimizer OptimizerRunner
	locker    planlock.Locker
	log       *logger.Logger
}

// New builds a Plan Service.
func New(trains trainrepo.Repository, plans planrepo.Repository, opt OptimizerRunner, locker planlock.Locker, baseLog *logger.Logger) *Service {
	return &Service{
		trains:    trains,
		plans:     plans,
		optimizer: opt,
		locker:    locker,
		log:       baseLog.With("service", "planservice.Service"),
	}
}

// Summary is the lightweight counts attached to Generate/Latest
// responses (spec.md §6).
type Summary struct {
	TotalTrains       int     `json:"totalTrains"`
	CriticalAlerts    int     `json:"criticalAlerts"`
	AverageConfidence float64 `json:"averageConfidence"`
	Status            domain.PlanStatus `json:"status"`
}

// GenerateResult is Generate's success response shape.
type GenerateResult struct {
	Plan           *domain.InductionPlan `json:"plan"`
	Summary        Summary               `json:"summary"`
	ProcessingTime int64                 `json:"processingTime"`
}

// ErrAlreadyFinalized is the Cause of the apperr.CodeConflict returned
// by Generate when a FINALIZED plan already exists for the requested
// date and forceRegenerate was not set; HTTP handlers unwrap it to
// surface the existing plan in the 409 body (spec.md §6).
type ErrAlreadyFinalized struct {
	ExistingPlan *domain.InductionPlan
}

func (e *ErrAlreadyFinalized) Error() string {
	return "a finalized plan already exists for this date: " + e.ExistingPlan.ID.String()
}

func requireGeneratePermission(ctx context.Context) error {
	id, ok := caller.FromContext(ctx)
	if !ok {
		return apperr.Unauthorized("planservice.Generate", "missing caller identity")
	}
	if !id.CanGenerate() {
		return apperr.Forbidden("planservice.Generate", "caller role does not permit plan generation")
	}
	return nil
}

// Generate runs the full generate pipeline for planDate (spec.md
// §4.6). forceRegenerate bypasses the idempotency conflict but never
// deletes the superseded plan (§9's first Open Question, resolved: keep
// superseded plans in history).
func (s *Service) Generate(ctx context.Context, planDate time.Time, forceRegenerate bool, reqConstraints optimizer.Constraints) (*GenerateResult, error) {
	if err := requireGeneratePermission(ctx); err != nil {
		return nil, err
	}
	id, _ := caller.FromContext(ctx)

	dateKey := planDate.Format("2006-01-02")
	acquired, release, err := s.locker.TryLock(ctx, dateKey)
	if err != nil {
		return nil, apperr.Internal("planservice.Generate", err)
	}
	defer release()
	if !acquired {
		return nil, apperr.New(apperr.CodeConflict, "planservice.Generate", "a generate request for this date is already in progress", nil)
	}

	if !forceRegenerate {
		existing, err := s.plans.FindFinalizedByDate(ctx, nil, planDate)
		if err == nil {
			metrics.PlanGenerateTotal.WithLabelValues("conflict").Inc()
			conflict := &ErrAlreadyFinalized{ExistingPlan: existing}
			return nil, apperr.New(apperr.CodeConflict, "planservice.Generate", conflict.Error(), conflict)
		}
		if !apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, apperr.Internal("planservice.Generate", err)
		}
	}

	allTrains, err := s.trains.ListAll(ctx, nil)
	if err != nil {
		return nil, apperr.Internal("planservice.Generate", err)
	}
	if len(allTrains) == 0 {
		metrics.PlanGenerateTotal.WithLabelValues("no_trains").Inc()
		return nil, apperr.BadRequest("planservice.Generate", "no trains available to plan against")
	}

	now := time.Now()
	out := s.optimizer.Run(ctx, optimizer.Input{Trains: allTrains, Constraints: reqConstraints, Now: now})
	fleetAlerts := alerts.Generate(allTrains, now)

	plan := &domain.InductionPlan{
		PlanDate:    planDate,
		GeneratedAt: now,
		Status:      domain.PlanFinalized,
		GeneratedBy: id.ID,
	}
	plan.SetRankedTrains(out.RankedTrains)
	plan.SetAlerts(fleetAlerts)
	plan.SetOptimizationMetrics(out.Metrics)
	plan.SetAIModelInfo(out.ModelInfo)

	if err := s.plans.Insert(ctx, nil, plan); err != nil {
		metrics.PlanGenerateTotal.WithLabelValues("persist_error").Inc()
		s.log.Error("failed to persist induction plan", "planDate", dateKey, "error", err)
		return nil, err
	}

	s.log.Info("induction plan generated", "planId", plan.ID, "planDate", dateKey, "rankedTrains", len(out.RankedTrains))
	metrics.PlanGenerateTotal.WithLabelValues("created").Inc()
	return &GenerateResult{
		Plan:           plan,
		Summary:        summarize(plan, out.Metrics, fleetAlerts),
		ProcessingTime: out.Metrics.ProcessingTimeMs,
	}, nil
}

func summarize(plan *domain.InductionPlan, metrics domain.OptimizationMetrics, fleetAlerts []domain.Alert) Summary {
	var critical int
	for _, a := range fleetAlerts {
		if a.Type == domain.AlertCritical {
			critical++
		}
	}
	return Summary{
		TotalTrains:       metrics.TotalTrainsEvaluated,
		CriticalAlerts:    critical,
		AverageConfidence: metrics.AverageConfidence,
		Status:            plan.Status,
	}
}

// LatestResult is Latest's success response shape.
type LatestResult struct {
	Plan           *domain.InductionPlan `json:"plan"`
	Summary        Summary               `json:"summary"`
	TopTrains      []domain.RankedEntry  `json:"topTrains"`
	CriticalAlerts []domain.Alert        `json:"criticalAlerts"`
}

// Latest returns the FINALIZED plan with the latest planDate; among
// plans for that date, the most recently generated one.
func (s *Service) Latest(ctx context.Context) (*LatestResult, error) {
	plan, err := s.plans.FindLatestFinalized(ctx, nil)
	if err != nil {
		return nil, err
	}
	ranked := plan.GetRankedTrains()
	planAlerts := plan.GetAlerts()
	planMetrics := plan.GetOptimizationMetrics()

	top := ranked
	if len(top) > 5 {
		top = top[:5]
	}
	var critical []domain.Alert
	for _, a := range planAlerts {
		if a.Type == domain.AlertCritical {
			critical = append(critical, a)
		}
	}

	return &LatestResult{
		Plan:           plan,
		Summary:        summarize(plan, planMetrics, planAlerts),
		TopTrains:      top,
		CriticalAlerts: critical,
	}, nil
}

// HistoryEntry is the lightweight per-plan projection History returns
// (spec.md §4.6: "no full rankings — only counts, confidence, and
// alerts").
type HistoryEntry struct {
	ID                uuid.UUID           `json:"id"`
	PlanDate          time.Time           `json:"planDate"`
	GeneratedAt       time.Time           `json:"generatedAt"`
	Status            domain.PlanStatus   `json:"status"`
	RankedTrainsCount int                 `json:"rankedTrainsCount"`
	AverageConfidence float64             `json:"averageConfidence"`
	AlertCount        int                 `json:"alertCount"`
	CriticalAlerts    int                 `json:"criticalAlerts"`
}

// HistoryResult is History's success response shape.
type HistoryResult struct {
	Plans      []HistoryEntry `json:"plans"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination describes the requested window; Total is the count of
// entries returned on this page (the repository does not paginate by
// offset, only by a generatedAt cursor, so Total reflects page size, not
// a global count).
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// History returns up to limit FINALIZED plans, newest first, skipping
// (page-1)*limit.
func (s *Service) History(ctx context.Context, limit, page int) (*HistoryResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}

	fetchCount := limit * page
	plans, err := s.plans.ListFinalized(ctx, nil, fetchCount, nil)
	if err != nil {
		return nil, apperr.Internal("planservice.History", err)
	}

	start := (page - 1) * limit
	if start > len(plans) {
		start = len(plans)
	}
	end := start + limit
	if end > len(plans) {
		end = len(plans)
	}
	pageSlice := plans[start:end]

	entries := make([]HistoryEntry, 0, len(pageSlice))
	for _, p := range pageSlice {
		ranked := p.GetRankedTrains()
		planAlerts := p.GetAlerts()
		planMetrics := p.GetOptimizationMetrics()
		var critical int
		for _, a := range planAlerts {
			if a.Type == domain.AlertCritical {
				critical++
			}
		}
		entries = append(entries, HistoryEntry{
			ID:                p.ID,
			PlanDate:          p.PlanDate,
			GeneratedAt:       p.GeneratedAt,
			Status:            p.Status,
			RankedTrainsCount: len(ranked),
			AverageConfidence: planMetrics.AverageConfidence,
			AlertCount:        len(planAlerts),
			CriticalAlerts:    critical,
		})
	}

	return &HistoryResult{
		Plans:      entries,
		Pagination: Pagination{Page: page, Limit: limit, Total: len(entries)},
	}, nil
}

// Explanation is one ranked entry plus a read-time recomputed detail.
type Explanation struct {
	Rank            int                          `json:"rank"`
	Train           domain.TrainRef              `json:"train"`
	Reasoning       string                       `json:"reasoning"`
	ConfidenceScore int                          `json:"confidenceScore"`
	Constraints     domain.ConstraintAttribution `json:"constraints"`
	DetailedAnalysis *DetailedAnalysis           `json:"detailedAnalysis"`
}

// DetailedAnalysis is derived on read from the current Train state, not
// from the plan's stored snapshot (spec.md §4.6 "Explain").
type DetailedAnalysis struct {
	FitnessValid       bool                     `json:"fitnessValid"`
	DaysToExpiry       int64                    `json:"daysToExpiry"`
	MaintenanceUrgency domain.MaintenanceUrgency `json:"maintenanceUrgency"`
	CurrentMileage     int64                    `json:"currentMileage"`
	BrandingPriority   int                      `json:"brandingPriority"`
	CurrentLocation    string                   `json:"currentLocation"`
}

// ExplainResult is Explain's success response shape.
type ExplainResult struct {
	Plan                *domain.InductionPlan      `json:"plan"`
	Explanations        []Explanation              `json:"explanations"`
	OptimizationMetrics domain.OptimizationMetrics `json:"optimizationMetrics"`
	AIModelInfo         domain.AIModelInfo         `json:"aiModelInfo"`
	Alerts              []domain.Alert             `json:"alerts"`
}

// Explain returns the full plan plus a per-entry detailed analysis
// recomputed from the current Train. A deleted train yields a nil
// DetailedAnalysis; the stored reasoning remains authoritative.
func (s *Service) Explain(ctx context.Context, planID uuid.UUID) (*ExplainResult, error) {
	plan, err := s.plans.FindByID(ctx, nil, planID)
	if err != nil {
		return nil, err
	}

	ranked := plan.GetRankedTrains()
	explanations := make([]Explanation, 0, len(ranked))
	now := time.Now()

	for _, entry := range ranked {
		var detail *DetailedAnalysis
		if t, err := s.trains.FindByID(ctx, nil, entry.TrainRef.ID); err == nil {
			eval := constraints.Evaluate(*t, now)
			detail = &DetailedAnalysis{
				FitnessValid:       eval.FitnessValid,
				DaysToExpiry:       eval.DaysToExpiry,
				MaintenanceUrgency: eval.MaintenanceUrgency,
				CurrentMileage:     t.CurrentMileage,
				BrandingPriority:   t.Branding.Priority,
				CurrentLocation:    t.CurrentLocation,
			}
		}
		explanations = append(explanations, Explanation{
			Rank:             entry.Rank,
			Train:            entry.TrainRef,
			Reasoning:        entry.Reasoning,
			ConfidenceScore:  entry.ConfidenceScore,
			Constraints:      entry.Constraints,
			DetailedAnalysis: detail,
		})
	}

	return &ExplainResult{
		Plan:                plan,
		Explanations:        explanations,
		OptimizationMetrics: plan.GetOptimizationMetrics(),
		AIModelInfo:         plan.GetAIModelInfo(),
		Alerts:              plan.GetAlerts(),
	}, nil
}

// SimulateResult is Simulate's response shape: a transient,
// never-persisted SIMULATION plan.
type SimulateResult struct {
	RankedTrains     []domain.RankedEntry          `json:"rankedTrains"`
	Alerts           []domain.Alert                `json:"alerts"`
	Metrics          domain.OptimizationMetrics    `json:"metrics"`
	ModelInfo        domain.AIModelInfo            `json:"modelInfo"`
	SimulationParams domain.SimulationParams       `json:"simulationParams"`
	ImpactAnalysis   simulator.ImpactAnalysis       `json:"impactAnalysis"`
}

// Simulate invokes the Simulator over the live train set and returns a
// transient result; spec.md §4.6 forbids persistence here.
func (s *Service) Simulate(ctx context.Context, targetRef string, modifications map[string]interface{}, baseDate time.Time, reqConstraints optimizer.Constraints) (*SimulateResult, error) {
	if err := requireGeneratePermission(ctx); err != nil {
		return nil, err
	}

	allTrains, err := s.trains.ListAll(ctx, nil)
	if err != nil {
		return nil, apperr.Internal("planservice.Simulate", err)
	}
	if len(allTrains) == 0 {
		return nil, apperr.BadRequest("planservice.Simulate", "no trains available to simulate against")
	}

	if baseDate.IsZero() {
		baseDate = time.Now()
	}

	out, err := simulator.Simulate(allTrains, targetRef, modifications, reqConstraints, baseDate, alerts.Generate, nil)
	if err != nil {
		return nil, apperr.NotFound("planservice.Simulate", err.Error())
	}

	return &SimulateResult{
		RankedTrains:     out.RankedTrains,
		Alerts:           out.Alerts,
		Metrics:          out.Metrics,
		ModelInfo:        out.ModelInfo,
		SimulationParams: out.SimulationParams,
		ImpactAnalysis:   out.ImpactAnalysis,
	}, nil
}
