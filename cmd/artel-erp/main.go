package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/artelsoft/artel-erp/internal/config"
	"github.com/artelsoft/artel-erp/internal/erp/handler"
	"github.com/artelsoft/artel-erp/internal/erp/migrate"
	"github.com/artelsoft/artel-erp/internal/erp/repository"
	"github.com/artelsoft/artel-erp/internal/erp/service"
	"github.com/artelsoft/artel-erp/internal/erp/sse"
	"github.com/artelsoft/artel-erp/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting artel-erp service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("db_driver", cfg.Database.Driver),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrate.Run(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)
	minioClient := initMinIO(cfg.MinIO, zapLogger)

	hub := sse.NewHub()

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, cfg, rdb, minioClient, hub)
	handlers := handler.NewHandlers(services, cfg, hub)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func registerRoutes(router *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{"version": Version, "build_time": BuildTime})
	})

	api := router.Group("/api/v1")

	// Public auth endpoints
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	// SSE takes its token from a query param, so it sits in its own group.
	sseGroup := api.Group("/sse")
	sseGroup.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		sseGroup.GET("/events", h.SSE.Stream)
	}

	authorized := api.Group("")
	authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		authorized.GET("/auth/me", h.Auth.Me)
		authorized.POST("/auth/register", middleware.RequireRole("admin"), h.Auth.Register)

		// Stage type catalog
		stageTypes := authorized.Group("/stage-types")
		{
			stageTypes.GET("", h.StageType.List)
			stageTypes.GET("/:id", h.StageType.Get)
			stageTypes.POST("", middleware.RequireRole("admin"), h.StageType.Create)
			stageTypes.PUT("/:id", middleware.RequireRole("admin"), h.StageType.Update)
			stageTypes.PATCH("/:id/active", middleware.RequireRole("admin"), h.StageType.SetActive)
			stageTypes.POST("/:id/toggle", middleware.RequireRole("admin"), h.StageType.Toggle)
		}

		// Process templates
		templates := authorized.Group("/templates")
		{
			templates.GET("", h.Template.List)
			templates.GET("/:id", h.Template.Get)
			templates.POST("", h.Template.Create)
			templates.PUT("/:id", h.Template.Update)
			templates.DELETE("/:id", h.Template.Delete)
			templates.POST("/:id/duplicate", h.Template.Duplicate)
			templates.POST("/:id/stages", h.Template.AddStage)
			templates.PUT("/:id/stages", h.Template.ReplaceStages)
			templates.PUT("/stages/:stageId", h.Template.UpdateStage)
			templates.DELETE("/stages/:stageId", h.Template.DeleteStage)
			templates.POST("/:id/instantiate", h.Template.Instantiate)
		}

		// Projects and their pipelines
		projects := authorized.Group("/projects")
		{
			projects.GET("", h.Project.List)
			projects.GET("/:id", h.Project.Get)
			projects.POST("", h.Project.Create)
			projects.PUT("/:id", h.Project.Update)
			projects.DELETE("/:id", h.Project.Delete)
			projects.GET("/:id/activity", h.Project.Activity)
			projects.GET("/:id/stages", h.Project.ListStages)
			projects.POST("/:id/stages", h.Project.AddStage)
		}

		stages := authorized.Group("/stages")
		{
			stages.GET("/:stageId", h.Project.GetStage)
			stages.PUT("/:stageId", h.Project.UpdateStage)
			stages.PATCH("/:stageId/status", h.Project.ChangeStageStatus)
			stages.DELETE("/:stageId", h.Project.DeleteStage)
			stages.POST("/:stageId/documents", h.Project.UploadDocument)
			stages.GET("/:stageId/documents", h.Project.ListDocuments)
			stages.PUT("/:stageId/media/:mediaId/comment", h.Project.UpsertMediaComment)
			stages.GET("/:stageId/comments", h.Project.ListMediaComments)
		}
		authorized.DELETE("/documents/:docId", h.Project.DeleteDocument)
		authorized.PUT("/comments/:commentId", h.Project.UpdateMediaComment)
		authorized.DELETE("/comments/:commentId", h.Project.DeleteMediaComment)

		// CRM deals
		deals := authorized.Group("/deals")
		{
			deals.GET("", h.Deal.List)
			deals.GET("/:id", h.Deal.Get)
			deals.POST("", h.Deal.Create)
			deals.PUT("/:id", h.Deal.Update)
			deals.PATCH("/:id/status", h.Deal.ChangeStatus)
			deals.DELETE("/:id", h.Deal.Delete)
			deals.GET("/:id/activity", h.Deal.Activity)
			deals.POST("/:id/convert", h.Deal.Convert)
		}

		// Tasks
		tasks := authorized.Group("/tasks")
		{
			tasks.GET("", h.Task.List)
			tasks.GET("/:id", h.Task.Get)
			tasks.POST("", h.Task.Create)
			tasks.PUT("/:id", h.Task.Update)
			tasks.DELETE("/:id", h.Task.Delete)
			tasks.POST("/:id/attachments", h.Task.AddAttachment)
			tasks.GET("/:id/attachments", h.Task.ListAttachments)
		}
		authorized.DELETE("/attachments/:attachmentId", h.Task.DeleteAttachment)

		// Warehouse
		warehouse := authorized.Group("/warehouse")
		{
			warehouse.GET("/categories", h.Warehouse.ListCategories)
			warehouse.POST("/categories", h.Warehouse.CreateCategory)
			warehouse.DELETE("/categories/:id", h.Warehouse.DeleteCategory)
			warehouse.GET("/items", h.Warehouse.ListItems)
			warehouse.GET("/items/low-stock", h.Warehouse.LowStock)
			warehouse.GET("/items/:id", h.Warehouse.GetItem)
			warehouse.POST("/items", h.Warehouse.CreateItem)
			warehouse.PUT("/items/:id", h.Warehouse.UpdateItem)
			warehouse.DELETE("/items/:id", h.Warehouse.DeleteItem)
			warehouse.POST("/movements", h.Warehouse.Move)
			warehouse.GET("/movements", h.Warehouse.ListMovements)
			warehouse.GET("/export", h.Warehouse.Export)
		}

		// Messages
		messages := authorized.Group("/messages")
		{
			messages.GET("", h.Message.List)
			messages.POST("", h.Message.Post)
			messages.DELETE("/:id", h.Message.Delete)
		}
	}
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var db *gorm.DB
	var err error
	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	default:
		// SQLite leaves foreign keys off unless asked; cascades depend on them.
		db, err = gorm.Open(sqlite.Open(cfg.Path+"?_pragma=foreign_keys(1)"), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// initMinIO returns nil when object storage is not configured; document
// uploads then keep metadata only.
func initMinIO(cfg config.MinIOConfig, zapLogger *zap.Logger) *minio.Client {
	if cfg.Endpoint == "" {
		zapLogger.Warn("MinIO endpoint not configured, file storage disabled")
		return nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		zapLogger.Warn("Failed to init MinIO client, file storage disabled", zap.Error(err))
		return nil
	}
	return client
}
