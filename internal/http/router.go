// Package http assembles the gin engine: route registration, the
// middleware chain, and the Prometheus exposition endpoint.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpH "github.com/kochimetro/induction-engine/internal/http/handlers"
	httpMW "github.com/kochimetro/induction-engine/internal/http/middleware"
	"github.com/kochimetro/induction-engine/internal/platform/logger"
	"github.com/kochimetro/induction-engine/internal/platform/metrics"
)

// RouterConfig wires every handler and middleware the engine's HTTP
// surface needs. Optional fields are skipped at registration time,
// matching the teacher pack's "nil handler means route not mounted"
// convention.
type RouterConfig struct {
	HealthHandler *httpH.HealthHandler
	PlanHandler   *httpH.PlanHandler
	Auth          *httpMW.Auth
	Log           *logger.Logger
}

// NewRouter builds the gin engine for the induction planning engine's
// `/api/induction` route group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLog(cfg.Log))
	}
	r.Use(httpMW.Metrics())

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api/induction")
	if cfg.Auth != nil {
		api.Use(cfg.Auth.RequireAuth())
	}

	if cfg.PlanHandler != nil {
		api.GET("/latest", cfg.PlanHandler.Latest)
		api.GET("/history", cfg.PlanHandler.History)
		api.GET("/explain/:planId", cfg.PlanHandler.Explain)
		api.POST("/generate", cfg.PlanHandler.Generate)
		api.POST("/simulate", cfg.PlanHandler.Simulate)
	}

	return r
}
