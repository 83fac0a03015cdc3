package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academy-admin-api/api/swagger"
	"github.com/noah-isme/academy-admin-api/internal/handler"
	"github.com/noah-isme/academy-admin-api/internal/middleware"
	"github.com/noah-isme/academy-admin-api/internal/models"
	"github.com/noah-isme/academy-admin-api/internal/repository"
	"github.com/noah-isme/academy-admin-api/internal/service"
	"github.com/noah-isme/academy-admin-api/pkg/cache"
	"github.com/noah-isme/academy-admin-api/pkg/config"
	"github.com/noah-isme/academy-admin-api/pkg/database"
	"github.com/noah-isme/academy-admin-api/pkg/export"
	"github.com/noah-isme/academy-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academy-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academy-admin-api/pkg/middleware/requestid"
)

// @title Academy Admin API
// @version 1.0.0
// @description Multi-tenant academy administration backend
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Pricing.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := buildRouter(cfg, logr, db, redisClient)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func buildRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) *gin.Engine {
	validate := validator.New()

	// repositories
	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	programRepo := repository.NewProgramRepository(db)
	facilityRepo := repository.NewFacilityRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	pricingRepo := repository.NewPricingRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// services
	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Pricing.MatrixCacheTTL, logr, cfg.Pricing.CacheEnabled)
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "academy-admin-api",
	})
	scopeService := service.NewScopeService(assignmentRepo, logr)
	bulkService := service.NewBulkService(metricsService, logr, cfg.Bulk.MaxBatchSize)
	pricingService := service.NewPricingService(pricingRepo, courseRepo, couponRepo, userRepo, cacheService, metricsService, validate, logr, cfg.Pricing.MatrixCacheTTL, cfg.Pricing.CurrencySymbol)
	exportService := service.NewExportService(pricingService, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	programService := service.NewProgramService(programRepo, assignmentRepo, userRepo, validate, logr)
	catalogService := service.NewCatalogService(facilityRepo, courseRepo, validate, logr)
	curriculumService := service.NewCurriculumService(curriculumRepo, courseRepo, userRepo, bulkService, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, pricingService, validate, logr)

	// handlers
	authHandler := handler.NewAuthHandler(authService)
	programHandler := handler.NewProgramHandler(programService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	curriculumHandler := handler.NewCurriculumHandler(curriculumService)
	pricingHandler := handler.NewPricingHandler(pricingService, exportService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		authed := auth.Group("")
		authed.Use(middleware.JWT(authService))
		authed.POST("/logout", authHandler.Logout)
		authed.PUT("/password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	// Every program-sensitive route sits behind the JWT and program scope
	// middlewares; role gates come last so the guard's verdict wins.
	scoped := api.Group("")
	scoped.Use(middleware.JWT(authService))
	scoped.Use(middleware.ProgramScope(scopeService))

	programs := scoped.Group("/programs")
	{
		programs.GET("", programHandler.List)
		programs.GET("/:id", programHandler.Get)
		programs.POST("", middleware.RequireSuperAdmin(), middleware.Audit(userRepo, models.AuditActionProgramCreate, "program"), programHandler.Create)
		programs.PUT("/:id", middleware.RequireRoles(models.RoleProgramAdmin), programHandler.Update)
		programs.DELETE("/:id", middleware.RequireSuperAdmin(), middleware.Audit(userRepo, models.AuditActionProgramDelete, "program"), programHandler.Delete)
		programs.GET("/:id/team", middleware.RequireRoles(models.RoleProgramAdmin, models.RoleProgramCoordinator), programHandler.ListTeam)
		programs.POST("/:id/team", middleware.RequireRoles(models.RoleProgramAdmin), programHandler.AssignUser)
		programs.DELETE("/:id/team/:assignmentId", middleware.RequireRoles(models.RoleProgramAdmin), programHandler.RemoveAssignment)
	}

	// Assignment self-service endpoints need no program context.
	mine := api.Group("/programs")
	mine.Use(middleware.JWT(authService))
	{
		mine.GET("/mine", programHandler.ListMine)
		mine.PUT("/assignments/:assignmentId/default", programHandler.SetDefaultAssignment)
	}

	facilities := scoped.Group("/facilities")
	{
		facilities.GET("", catalogHandler.ListFacilities)
		facilities.GET("/:id", catalogHandler.GetFacility)
		facilities.POST("", middleware.RequireRoles(models.RoleProgramAdmin), catalogHandler.CreateFacility)
	}

	courses := scoped.Group("/courses")
	{
		courses.GET("", catalogHandler.ListCourses)
		courses.GET("/:id", catalogHandler.GetCourse)
		courses.POST("", middleware.RequireRoles(models.RoleProgramAdmin), catalogHandler.CreateCourse)
		courses.PUT("/:id", middleware.RequireRoles(models.RoleProgramAdmin), catalogHandler.UpdateCourse)
		courses.GET("/:id/levels", curriculumHandler.ListLevels)
	}

	levels := scoped.Group("/levels")
	{
		levels.POST("", middleware.RequireRoles(models.RoleProgramAdmin, models.RoleProgramCoordinator), curriculumHandler.CreateLevel)
		levels.GET("/:levelId/modules", curriculumHandler.ListModules)
		levels.PUT("/:levelId/modules/reorder", middleware.RequireRoles(models.RoleProgramAdmin, models.RoleProgramCoordinator), curriculumHandler.ReorderModules)
	}

	modules := scoped.Group("/modules")
	{
		modules.POST("", middleware.RequireRoles(models.RoleProgramAdmin, models.RoleProgramCoordinator), curriculumHandler.CreateModule)
		modules.POST("/bulk-status", middleware.RequireRoles(models.RoleProgramAdmin, models.RoleProgramCoordinator), curriculumHandler.BulkUpdateStatus)
		modules.DELETE("/:id", middleware.RequireSuperAdmin(), middleware.Audit(userRepo, models.AuditActionModuleDelete, "curriculum"), curriculumHandler.DeleteModule)
	}

	pricing := scoped.Group("/pricing")
	{
		pricing.POST("/lookup", pricingHandler.Lookup)
		pricing.GET("/matrix/:facilityId", pricingHandler.Matrix)
		pricing.GET("/matrix/:facilityId/export", pricingHandler.ExportMatrix)
		pricing.POST("/entries", middleware.RequireRoles(models.RoleProgramAdmin), pricingHandler.CreateEntry)
		pricing.PUT("/entries/:id", middleware.RequireRoles(models.RoleProgramAdmin), pricingHandler.UpdateEntry)
		pricing.DELETE("/entries/:id", middleware.RequireRoles(models.RoleProgramAdmin), pricingHandler.DeactivateEntry)
		pricing.POST("/import", middleware.RequireRoles(models.RoleProgramAdmin), middleware.Audit(userRepo, models.AuditActionPricingImport, "pricing"), pricingHandler.Import)
	}

	enrollments := scoped.Group("/enrollments")
	{
		enrollments.GET("", enrollmentHandler.List)
		enrollments.GET("/:id", enrollmentHandler.Get)
		enrollments.POST("", middleware.RequireRoles(models.RoleProgramAdmin, models.RoleProgramCoordinator), enrollmentHandler.Create)
		enrollments.DELETE("/:id", middleware.RequireRoles(models.RoleProgramAdmin, models.RoleProgramCoordinator), enrollmentHandler.Cancel)
	}

	system := api.Group("/system")
	system.Use(middleware.JWT(authService))
	{
		system.GET("/status", middleware.RequireSuperAdmin(), metricsHandler.Status)
	}

	return r
}
