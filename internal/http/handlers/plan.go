package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kochimetro/induction-engine/internal/http/response"
	"github.com/kochimetro/induction-engine/internal/optimizer"
	"github.com/kochimetro/induction-engine/internal/platform/apperr"
	"github.com/kochimetro/induction-engine/internal/services/planservice"
)

// PlanHandler exposes the Plan Service over HTTP, matching the wire
// contract in spec.md §6 exactly.
type PlanHandler struct {
	svc *planservice.Service
}

func NewPlanHandler(svc *planservice.Service) *PlanHandler {
	return &PlanHandler{svc: svc}
}

type generateRequest struct {
	PlanDate        string             `json:"planDate"`
	ForceRegenerate bool               `json:"forceRegenerate"`
	Constraints     map[string]float64 `json:"constraints"`
}

// POST /generate
func (h *PlanHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength != 0 {
		response.Error(c, apperr.BadRequest("handlers.Generate", "malformed request body"))
		return
	}

	planDate := time.Now()
	if req.PlanDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PlanDate)
		if err != nil {
			response.Error(c, apperr.BadRequest("handlers.Generate", "planDate must be an ISO-8601 date"))
			return
		}
		planDate = parsed
	}

	result, err := h.svc.Generate(c.Request.Context(), planDate, req.ForceRegenerate, optimizer.Constraints{Weights: req.Constraints})
	if err != nil {
		var conflict *planservice.ErrAlreadyFinalized
		if errors.As(err, &conflict) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"existingPlan": conflict.ExistingPlan,
				"suggestion":   "pass forceRegenerate=true to create an additional plan for this date",
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{
		"plan":           result.Plan,
		"summary":        result.Summary,
		"processingTime": result.ProcessingTime,
	})
}

// GET /latest
func (h *PlanHandler) Latest(c *gin.Context) {
	result, err := h.svc.Latest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{
		"plan":           result.Plan,
		"summary":        result.Summary,
		"topTrains":      result.TopTrains,
		"criticalAlerts": result.CriticalAlerts,
	})
}

// GET /history
func (h *PlanHandler) History(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 100 {
			response.Error(c, apperr.BadRequest("handlers.History", "limit must be an integer between 1 and 100"))
			return
		}
		limit = parsed
	}
	page := 1
	if v := c.Query("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			response.Error(c, apperr.BadRequest("handlers.History", "page must be a positive integer"))
			return
		}
		page = parsed
	}

	result, err := h.svc.History(c.Request.Context(), limit, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{
		"plans":      result.Plans,
		"pagination": result.Pagination,
	})
}

// GET /explain/:planId
func (h *PlanHandler) Explain(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("planId"))
	if err != nil {
		response.Error(c, apperr.BadRequest("handlers.Explain", "planId must be a valid uuid"))
		return
	}

	result, err := h.svc.Explain(c.Request.Context(), planID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{
		"plan":                result.Plan,
		"explanations":        result.Explanations,
		"optimizationMetrics": result.OptimizationMetrics,
		"aiModelInfo":         result.AIModelInfo,
		"alerts":              result.Alerts,
	})
}

type simulateRequest struct {
	TrainID       string                 `json:"trainId" binding:"required"`
	Modifications map[string]interface{} `json:"modifications" binding:"required"`
	BaseDate      string                 `json:"baseDate"`
	Constraints   map[string]float64     `json:"constraints"`
}

// POST /simulate
func (h *PlanHandler) Simulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.BadRequest("handlers.Simulate", "trainId and modifications are required"))
		return
	}

	var baseDate time.Time
	if req.BaseDate != "" {
		parsed, err := time.Parse("2006-01-02", req.BaseDate)
		if err != nil {
			response.Error(c, apperr.BadRequest("handlers.Simulate", "baseDate must be an ISO-8601 date"))
			return
		}
		baseDate = parsed
	}

	result, err := h.svc.Simulate(c.Request.Context(), req.TrainID, req.Modifications, baseDate, optimizer.Constraints{Weights: req.Constraints})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"simulation": result})
}
