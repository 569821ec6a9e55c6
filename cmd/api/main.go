package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campuskit/campus-info-api/api/swagger"
	"github.com/campuskit/campus-info-api/internal/handler"
	"github.com/campuskit/campus-info-api/internal/middleware"
	"github.com/campuskit/campus-info-api/internal/models"
	"github.com/campuskit/campus-info-api/internal/repository"
	"github.com/campuskit/campus-info-api/internal/service"
	"github.com/campuskit/campus-info-api/migrations"
	"github.com/campuskit/campus-info-api/pkg/cache"
	"github.com/campuskit/campus-info-api/pkg/config"
	"github.com/campuskit/campus-info-api/pkg/database"
	"github.com/campuskit/campus-info-api/pkg/logger"
	corsmiddleware "github.com/campuskit/campus-info-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuskit/campus-info-api/pkg/middleware/requestid"
	"github.com/campuskit/campus-info-api/pkg/storage"
)

// @title Campus Info API
// @version 1.0.0
// @description Campus information management API
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if err := migrations.Up(db.DB); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Caching and live feeds degrade gracefully without Redis.
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	configRepo := repository.NewConfigurationRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	// Services.
	validate := validator.New()
	authService := service.NewAuthService(cfg.JWT.Secret)
	configurationService := service.NewConfigurationService(configRepo, cacheRepo, cfg.Aggregation.DefaultMinStudents, logr)
	notificationService := service.NewNotificationService(notificationRepo, cacheRepo, cfg.Dispatch.Workers, cfg.Dispatch.BufferSize, logr)
	notificationService.Start(ctx)
	defer notificationService.Stop()

	facultyScheduleService := service.NewFacultyScheduleService(userRepo, scheduleRepo, configurationService, notificationService, logr)
	scheduleService := service.NewScheduleService(scheduleRepo, auditRepo, validate, logr)
	archiveService := service.NewArchiveService(archiveRepo, scheduleRepo, auditRepo, cfg.Archive.DeleteBatchSize, logr)
	roomService := service.NewRoomService(roomRepo, auditRepo, nil, logr)
	announcementService := service.NewAnnouncementService(announcementRepo, cacheRepo, validate, logr)
	auditService := service.NewAuditService(auditRepo)

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportService := service.NewExportService(facultyScheduleService, archiveRepo, store, signer,
			cfg.APIPrefix+"/exports/download", logr)
		exportService.StartCleanup(ctx, cfg.Exports.CleanupInterval, cfg.Exports.SignedURLTTL)
		exportHandler = handler.NewExportHandler(exportService)
	}

	// Handlers.
	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	facultyHandler := handler.NewFacultyScheduleHandler(facultyScheduleService)
	archiveHandler := handler.NewArchiveHandler(archiveService)
	roomHandler := handler.NewRoomHandler(roomService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	announcementHandler := handler.NewAnnouncementHandler(announcementService)
	configurationHandler := handler.NewConfigurationHandler(configurationService)
	auditHandler := handler.NewAuditHandler(auditService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := middleware.NewMetrics()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metrics.Handler())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	if exportHandler != nil {
		// Token in the URL is the authorization; links are shared outside
		// authenticated sessions.
		api.GET("/exports/download", exportHandler.Download)
	}

	authed := api.Group("", middleware.Authenticate(authService))

	schedules := authed.Group("/schedules")
	{
		schedules.POST("", middleware.RequireRoles(models.RoleStudent, models.RoleAdmin), scheduleHandler.Upload)
		schedules.GET("", middleware.RequireRoles(models.RoleAdmin), scheduleHandler.List)
		schedules.GET("/me", scheduleHandler.GetMine)
		schedules.GET("/:studentID", scheduleHandler.GetByStudent)
		schedules.DELETE("/:studentID", middleware.RequireRoles(models.RoleStudent, models.RoleAdmin), scheduleHandler.Delete)
	}

	faculty := authed.Group("/faculty")
	{
		faculty.GET("/schedule", middleware.RequireRoles(models.RoleFaculty), facultyHandler.GetMine)
		faculty.GET("/:facultyID/schedule", middleware.RequireRoles(models.RoleAdmin), facultyHandler.GetByFaculty)
	}

	archives := authed.Group("/archives", middleware.RequireRoles(models.RoleAdmin))
	{
		archives.POST("/reset", archiveHandler.Reset)
		archives.POST("/:id/resume", archiveHandler.Resume)
		archives.GET("", archiveHandler.List)
		archives.GET("/:id", archiveHandler.Get)
		archives.DELETE("/:id", archiveHandler.Delete)
	}

	if cfg.Rooms.Enabled {
		rooms := authed.Group("/rooms")
		{
			rooms.GET("", roomHandler.List)
			rooms.GET("/status", roomHandler.Status)
			rooms.GET("/vacancies", roomHandler.Vacancies)
			rooms.POST("", middleware.RequireRoles(models.RoleAdmin), roomHandler.Create)

			periods := rooms.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleFaculty))
			{
				periods.POST("/vacancies", roomHandler.AddVacancy)
				periods.DELETE("/vacancies", roomHandler.RemoveVacancy)
				periods.POST("/occupancies", roomHandler.AddOccupancy)
				periods.DELETE("/occupancies", roomHandler.RemoveOccupancy)
			}
		}
	}

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
	}

	announcements := authed.Group("/announcements", middleware.Audit(auditRepo, "announcement", logr))
	{
		announcements.GET("", announcementHandler.List)
		announcements.GET("/:id", announcementHandler.Get)
		announcements.POST("", middleware.RequireRoles(models.RoleAdmin), announcementHandler.Create)
		announcements.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), announcementHandler.Update)
		announcements.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), announcementHandler.Delete)
	}

	configurations := authed.Group("/configurations", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(auditRepo, "configuration", logr))
	{
		configurations.GET("", configurationHandler.List)
		configurations.GET("/:key", configurationHandler.Get)
		configurations.PUT("", configurationHandler.Update)
		configurations.PUT("/bulk", configurationHandler.BulkUpdate)
	}

	authed.GET("/activity-logs", middleware.RequireRoles(models.RoleAdmin), auditHandler.List)

	if exportHandler != nil {
		exports := authed.Group("/exports")
		{
			exports.POST("/faculty/:facultyID/schedule", middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin), exportHandler.FacultySchedulePDF)
			exports.POST("/archives/:id", middleware.RequireRoles(models.RoleAdmin), exportHandler.ArchiveCSV)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}
