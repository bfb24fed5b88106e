package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/cycle-care-api/internal/handler"
	"github.com/noah-isme/cycle-care-api/internal/middleware"
	"github.com/noah-isme/cycle-care-api/internal/models"
	"github.com/noah-isme/cycle-care-api/internal/service"
	"github.com/noah-isme/cycle-care-api/pkg/config"
	"github.com/noah-isme/cycle-care-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/cycle-care-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/cycle-care-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg         *config.Config
	logger      *zap.Logger
	metrics     *service.MetricsService
	auth        *service.AuthService
	cycle       *service.CycleService
	meals       *service.MealService
	audit       *service.AuditService
	rateLimiter *middleware.RateLimiter
	checks      map[string]handler.Pinger
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics))

	metricsHandler := handler.NewMetricsHandler(d.metrics, d.checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix)
	api.Use(d.rateLimiter.Middleware())
	api.Use(middleware.WithResponseMeta())

	authHandler := handler.NewAuthHandler(d.auth)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	secured := api.Group("")
	secured.Use(middleware.JWT(d.auth))
	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/me", authHandler.Me)

	audit := func(action, resource string) gin.HandlerFunc {
		if d.audit == nil {
			return middleware.Audit(nil, d.logger, action, resource)
		}
		return middleware.Audit(d.audit, d.logger, action, resource)
	}

	cycleHandler := handler.NewCycleHandler(d.cycle, d.cfg.Cycle.Location)
	logs := secured.Group("/cycle-logs")
	logs.GET("", cycleHandler.ListLogs)
	logs.POST("", audit(models.AuditActionPeriodLogCreate, "period_logs"), cycleHandler.CreateLog)
	logs.GET("/stats", cycleHandler.Stats)
	logs.GET("/:id", cycleHandler.GetLog)
	logs.PUT("/:id", audit(models.AuditActionPeriodLogUpdate, "period_logs"), cycleHandler.UpdateLog)
	logs.DELETE("/:id", audit(models.AuditActionPeriodLogDelete, "period_logs"), cycleHandler.DeleteLog)

	cycle := secured.Group("/cycle")
	cycle.GET("/status", cycleHandler.Status)
	cycle.GET("/calendar", cycleHandler.Calendar)
	cycle.GET("/predictions", cycleHandler.Predictions)
	cycle.GET("/export", audit(models.AuditActionCycleExport, "period_logs"), cycleHandler.Export)

	mealHandler := handler.NewMealHandler(d.meals)
	meals := secured.Group("/meals")
	meals.GET("", mealHandler.List)
	meals.POST("", audit(models.AuditActionMealCreate, "meal_logs"), mealHandler.Create)
	meals.DELETE("/:id", audit(models.AuditActionMealDelete, "meal_logs"), mealHandler.Delete)

	system := secured.Group("/system")
	system.Use(middleware.RequireRoles(models.RoleAdmin))
	system.GET("/metrics", metricsHandler.Snapshot)

	return r
}
