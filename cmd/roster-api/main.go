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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutor-roster-api/api/swagger"
	"github.com/noah-isme/tutor-roster-api/internal/handler"
	"github.com/noah-isme/tutor-roster-api/internal/ledger"
	internalmiddleware "github.com/noah-isme/tutor-roster-api/internal/middleware"
	"github.com/noah-isme/tutor-roster-api/internal/repository"
	"github.com/noah-isme/tutor-roster-api/internal/service"
	"github.com/noah-isme/tutor-roster-api/pkg/cache"
	"github.com/noah-isme/tutor-roster-api/pkg/config"
	"github.com/noah-isme/tutor-roster-api/pkg/database"
	"github.com/noah-isme/tutor-roster-api/pkg/export"
	"github.com/noah-isme/tutor-roster-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutor-roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutor-roster-api/pkg/middleware/requestid"
)

// @title Tutor Roster API
// @version 1.0.0
// @description Student and tutor roster with weekly attendance and monthly payment ledgers
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			logr.Fatal("failed to migrate schema", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			cfg.Cache.Enabled = false
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	clock := ledger.SystemClock{Location: cfg.Roster.Location()}
	validate := validator.New()

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, service.CacheConfig{
		Enabled: cfg.Cache.Enabled,
		TTL:     cfg.Cache.TTL,
		Prefix:  cfg.Cache.Prefix,
	}, logr)

	personRepo := repository.NewPersonRepository(db)
	personSvc := service.NewPersonService(personRepo, cacheSvc, clock, validate, logr)
	ledgerSvc := service.NewLedgerService(personRepo, cacheSvc, metricsSvc, clock, validate, logr)
	exportSvc := service.NewExportService(personRepo, clock, logr, export.NewCSVExporter(), export.NewPDFExporter())
	authSvc := service.NewAuthService(service.Operator{
		Email:        cfg.Operator.Email,
		Name:         cfg.Operator.Name,
		PasswordHash: cfg.Operator.PasswordHash,
	}, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	if cfg.Operator.PasswordHash == "" {
		logr.Warn("OPERATOR_PASSWORD_HASH is empty, login is disabled")
	}

	personHandler := handler.NewPersonHandler(personSvc)
	ledgerHandler := handler.NewLedgerHandler(ledgerSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(cacheRepo.Ping)
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	secured.GET("/auth/me", authHandler.Me)
	secured.GET("/metrics/summary", metricsHandler.Summary)

	people := secured.Group("/people")
	people.GET("", personHandler.List)
	people.POST("", personHandler.Create)
	people.GET("/:id", personHandler.Get)
	people.PUT("/:id", personHandler.Update)
	people.DELETE("/:id", personHandler.Delete)

	people.GET("/:id/attendance", ledgerHandler.Attendance)
	people.POST("/:id/attendance", ledgerHandler.MarkAttendance)
	people.DELETE("/:id/attendance/:week", ledgerHandler.UnmarkAttendance)

	people.GET("/:id/payments", ledgerHandler.Payments)
	people.POST("/:id/payments", ledgerHandler.Pay)
	people.POST("/:id/payments/:month/unpay", ledgerHandler.Unpay)
	people.DELETE("/:id/payments/:month", ledgerHandler.DeletePayment)

	secured.GET("/payments/overdue", ledgerHandler.Overdue)
	secured.GET("/exports/payments", exportHandler.PaymentRoster)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
