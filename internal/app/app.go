// Package app wires every layer of the induction planning engine
// together: configuration, the database connection, repositories, the
// pure engine packages' service-facing adapters, HTTP handlers and
// middleware, and the gin router.
package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kochimetro/induction-engine/internal/data/db"
	"github.com/kochimetro/induction-engine/internal/data/planlock"
	planrepo "github.com/kochimetro/induction-engine/internal/data/repos/plan"
	trainrepo "github.com/kochimetro/induction-engine/internal/data/repos/train"
	ihttp "github.com/kochimetro/induction-engine/internal/http"
	httpH "github.com/kochimetro/induction-engine/internal/http/handlers"
	httpMW "github.com/kochimetro/induction-engine/internal/http/middleware"
	"github.com/kochimetro/induction-engine/internal/platform/logger"
	"github.com/kochimetro/induction-engine/internal/platform/metrics"
	"github.com/kochimetro/induction-engine/internal/services/optimizeradapter"
	"github.com/kochimetro/induction-engine/internal/services/planservice"
)

// App is the fully wired engine; Run starts serving HTTP, Close
// releases every held resource.
type App struct {
	Log    *logger.Logger
	DB     *gorm.DB
	Router *gin.Engine
	Cfg    Config

	Trains trainrepo.Repository
	Plans  planrepo.Repository
	Locker planlock.Locker
	Plan   *planservice.Service

	pg *db.Service
}

// New builds the App from the process environment.
func New() (*App, error) {
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("loading induction planning engine configuration")

	metrics.RegisterDefault()

	pg, err := db.NewService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	gdb := pg.DB()

	trains := trainrepo.New(gdb, log)
	plans := planrepo.New(gdb, log)

	locker, err := planlock.NewLocker(cfg.RedisURL, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init plan lock: %w", err)
	}

	adapter := optimizeradapter.New(cfg.ExternalOptimizerURL, cfg.ExternalOptimizerTimeout, cfg.ExternalOptimizerRateHz, log)

	planSvc := planservice.New(trains, plans, adapter, locker, log)

	auth := httpMW.NewAuth(cfg.JWTSecretKey, log)
	router := ihttp.NewRouter(ihttp.RouterConfig{
		HealthHandler: httpH.NewHealthHandler(),
		PlanHandler:   httpH.NewPlanHandler(planSvc),
		Auth:          auth,
		Log:           log,
	})

	return &App{
		Log:    log,
		DB:     gdb,
		Router: router,
		Cfg:    cfg,
		Trains: trains,
		Plans:  plans,
		Locker: locker,
		Plan:   planSvc,
		pg:     pg,
	}, nil
}

// Run starts the HTTP server, blocking until it stops.
func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(a.Cfg.HTTPAddress)
}

// Close releases the database connection and flushes the logger.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
