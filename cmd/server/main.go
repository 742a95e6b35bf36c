package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/config"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/middleware"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/entity"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/handler"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/service"
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

	zapLogger.Info("Starting sofany-crm production engine",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	// частичные индексы и прочее, что AutoMigrate не умеет
	for _, sql := range entity.SupplementalDDL {
		if err := db.Exec(sql).Error; err != nil {
			zapLogger.Warn("Migration SQL warning (may already exist)", zap.String("sql", sql), zap.Error(err))
		}
	}
	zapLogger.Info("Database migration completed")

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, rdb, cfg.Order.NumberPrefix, zapLogger)
	handlers := handler.NewHandlers(services, repos)

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
		WriteTimeout: cfg.Server.WriteTimeout,
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
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
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

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// Заказы
		orders := v1.Group("/orders")
		{
			orders.POST("", h.Order.Create)
			orders.GET("", h.Order.List)
			orders.GET("/:id", h.Order.Get)
			orders.GET("/:id/history", h.Order.History)
			orders.PUT("/:id/status", h.Order.UpdateStatus)
			orders.GET("/:id/operations", h.Operation.ListByOrder)
			orders.GET("/:id/availability", h.Purchase.CheckAvailability)
			orders.GET("/:id/materials", h.Purchase.Materials)
			orders.GET("/:id/purchase-list", h.Purchase.GetByOrder)
		}

		// Производственные операции
		operations := v1.Group("/operations")
		{
			operations.POST("", h.Operation.Create)
			operations.PUT("/:id", h.Operation.Update)
			operations.POST("/:id/complete", h.Operation.Complete)
		}

		// Канбан производства
		kanban := v1.Group("/kanban")
		{
			kanban.GET("/board", h.Kanban.Board)
			kanban.PUT("/orders/:id/stage", h.Kanban.MoveStage)
		}

		// Листы закупки
		purchaseLists := v1.Group("/purchase-lists")
		{
			purchaseLists.POST("", h.Purchase.CreateList)
			purchaseLists.GET("", h.Purchase.List)
		}

		// Склад
		stock := v1.Group("/stock")
		{
			stock.POST("", h.Stock.Create)
			stock.PUT("/:id", h.Stock.Update)
			stock.GET("", h.Stock.List)
		}

		// Работы и зарплата
		workLog := v1.Group("/work-log")
		{
			workLog.POST("", h.Payroll.LogWork)
			workLog.GET("", h.Payroll.ListWorkLog)
		}
		payroll := v1.Group("/payroll")
		{
			payroll.GET("", h.Payroll.ListPayroll)
			payroll.POST("/reconcile", h.Payroll.Reconcile)
			payroll.GET("/report", h.Payroll.Report)
		}

		v1.GET("/employees", h.Payroll.ListEmployees)
	}
}
