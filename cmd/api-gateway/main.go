package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/timetable-ace/scheduler-api/api/swagger"
	"github.com/timetable-ace/scheduler-api/internal/handler"
	"github.com/timetable-ace/scheduler-api/internal/middleware"
	"github.com/timetable-ace/scheduler-api/internal/models"
	"github.com/timetable-ace/scheduler-api/internal/repository"
	"github.com/timetable-ace/scheduler-api/internal/service"
	"github.com/timetable-ace/scheduler-api/pkg/cache"
	"github.com/timetable-ace/scheduler-api/pkg/config"
	"github.com/timetable-ace/scheduler-api/pkg/database"
	"github.com/timetable-ace/scheduler-api/pkg/logger"
	corsmiddleware "github.com/timetable-ace/scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/timetable-ace/scheduler-api/pkg/middleware/requestid"
)

// @title Timetable Ace Scheduler API
// @version 1.0.0
// @description Constraint-aware weekly timetable generation, conflict detection, and manual override workflow
// @BasePath /api/v1
// @schemes http

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

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Postgres backs the audit trail only; the scheduler itself is in-memory.
	// Optional: without it the bounded in-memory trail stands alone.
	var auditRepo service.AuditLogRepository
	if cfg.Audit.Persist {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Warn("postgres unavailable, audit persistence disabled", zap.Error(err))
		} else {
			defer db.Close() //nolint:errcheck
			auditRepo = repository.NewAuditLogRepository(db)
		}
	}

	auditSvc := service.NewAuditService(auditRepo,
		cfg.Audit.MemoryCapacity, cfg.Audit.WorkerConcurrency, cfg.Audit.WorkerRetries, logr)
	auditSvc.Start(context.Background())
	defer auditSvc.Stop()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	snapshotCache := service.NewSnapshotCacheService(cacheRepo, metricsSvc, cfg.Scheduler.SnapshotCacheTTL)

	catalogSvc := service.NewCatalogService(validate, auditSvc, logr)
	availabilitySvc := service.NewAvailabilityService()
	conflictSvc := service.NewConflictService()

	seed := cfg.Scheduler.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	generatorSvc := service.NewGeneratorService(availabilitySvc, conflictSvc,
		service.NewRandomPicker(seed), validate, logr)
	overrideSvc := service.NewOverrideService(conflictSvc, catalogSvc, auditSvc,
		snapshotCache, validate, cfg.Scheduler.EditSessionTTL, logr)
	exportSvc := service.NewExportService()

	authSvc := service.NewAuthService(validate, auditSvc, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	seedAccounts(authSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	timetableHandler := handler.NewTimetableHandler(generatorSvc, overrideSvc,
		catalogSvc, exportSvc, snapshotCache, auditSvc, metricsSvc)
	overrideHandler := handler.NewOverrideHandler(overrideSvc, metricsSvc)
	datasetHandler := handler.NewDatasetHandler(catalogSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("", middleware.JWT(authSvc))
	protected.GET("/auth/me", authHandler.Me)

	protected.POST("/dataset/import", middleware.RequireRoles(models.RoleAdmin), datasetHandler.Import)
	protected.GET("/dataset", middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty), datasetHandler.Get)
	protected.GET("/dataset/constraints", middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty), datasetHandler.GetConstraints)
	protected.PUT("/dataset/constraints", middleware.RequireRoles(models.RoleAdmin), datasetHandler.UpdateConstraints)

	protected.POST("/timetable/generate", middleware.RequireRoles(models.RoleAdmin), timetableHandler.Generate)
	protected.GET("/timetable", timetableHandler.GetCommitted)
	protected.GET("/timetable/students/:id", timetableHandler.StudentTimetable)
	protected.POST("/timetable/attendance", middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty), timetableHandler.MarkAttendance)
	protected.POST("/timetable/suggest-faculty", middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty), timetableHandler.SuggestFaculty)
	if cfg.Exports.Enabled {
		protected.GET("/timetable/export", timetableHandler.Export)
	}

	protected.POST("/timetable/edit-sessions", middleware.RequireRoles(models.RoleAdmin), overrideHandler.Begin)
	protected.PATCH("/timetable/edit-sessions/:id/entries", middleware.RequireRoles(models.RoleAdmin), overrideHandler.ApplyEdit)
	protected.POST("/timetable/edit-sessions/:id/commit", middleware.RequireRoles(models.RoleAdmin), overrideHandler.Commit)
	protected.DELETE("/timetable/edit-sessions/:id", middleware.RequireRoles(models.RoleAdmin), overrideHandler.Cancel)

	protected.GET("/audit-logs", middleware.RequireRoles(models.RoleAdmin), auditHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// seedAccounts registers the default development accounts. Replace with a real
// user store before exposing the service.
func seedAccounts(authSvc *service.AuthService, logr *zap.Logger) {
	accounts := []struct {
		email, name, role, password string
	}{
		{"admin@timetable.ace", "Administrator", models.RoleAdmin, "admin123"},
		{"faculty@timetable.ace", "Faculty Member", models.RoleFaculty, "faculty123"},
		{"student@timetable.ace", "Student", models.RoleStudent, "student123"},
	}
	for _, a := range accounts {
		if err := authSvc.RegisterUser(a.email, a.name, a.role, a.password); err != nil {
			logr.Warn("failed to seed account", zap.String("email", a.email), zap.Error(err))
		}
	}
}
