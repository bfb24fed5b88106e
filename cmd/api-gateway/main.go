package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/cycle-care-api/api/swagger"
	"github.com/noah-isme/cycle-care-api/internal/handler"
	"github.com/noah-isme/cycle-care-api/internal/middleware"
	"github.com/noah-isme/cycle-care-api/internal/repository"
	"github.com/noah-isme/cycle-care-api/internal/service"
	"github.com/noah-isme/cycle-care-api/pkg/cache"
	"github.com/noah-isme/cycle-care-api/pkg/config"
	"github.com/noah-isme/cycle-care-api/pkg/cyclemath"
	"github.com/noah-isme/cycle-care-api/pkg/database"
	"github.com/noah-isme/cycle-care-api/pkg/logger"
)

// @title Cycle Care API
// @version 1.0.0
// @description Menstrual cycle tracking, calendar and prediction service
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	swagger.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := validator.New()
	engine := cyclemath.New(cfg.Cycle.Location, cyclemath.WithFallbackPeriodLength(cfg.Cycle.FallbackPeriodLength))

	userRepo := repository.NewUserRepository(db)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	cycleSvc := service.NewCycleService(repository.NewPeriodLogRepository(db), cacheSvc, metrics, engine, validate, logr, service.CycleConfig{
		DefaultPredictions: cfg.Cycle.DefaultPredictions,
		MaxPredictions:     cfg.Cycle.MaxPredictions,
		CacheTTL:           cfg.Cache.TTL,
	})
	mealSvc := service.NewMealService(repository.NewMealRepository(db), validate, logr, cfg.Cycle.Location)

	auditSvc := service.NewAuditService(userRepo, logr)
	auditSvc.Start(context.Background())

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, metrics)
	go rateLimiter.Run(ctx)

	checks := map[string]handler.Pinger{"database": handler.PingFunc(db.PingContext)}
	if redisClient != nil {
		checks["redis"] = cacheRepo
	}

	router := newRouter(routerDeps{
		cfg:         cfg,
		logger:      logr,
		metrics:     metrics,
		auth:        authSvc,
		cycle:       cycleSvc,
		meals:       mealSvc,
		audit:       auditSvc,
		rateLimiter: rateLimiter,
		checks:      checks,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.Bool("cache", cacheSvc.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	auditSvc.Stop(shutdownCtx)
}
