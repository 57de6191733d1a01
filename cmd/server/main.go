package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnsphere/lms-service/internal/auth"
	"github.com/learnsphere/lms-service/internal/cache"
	"github.com/learnsphere/lms-service/internal/config"
	"github.com/learnsphere/lms-service/internal/handlers"
	"github.com/learnsphere/lms-service/internal/payment"
	"github.com/learnsphere/lms-service/internal/repositories/postgres"
	"github.com/learnsphere/lms-service/internal/services"
	"github.com/learnsphere/lms-service/internal/utils"
	"github.com/learnsphere/lms-service/internal/validator"
	"github.com/learnsphere/lms-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	if err := postgres.AutoMigrate(db); err != nil {
		logger.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, report caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, utils.ToSlogLogger(logger))
	}

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("Event publisher setup failed", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	auth.Init(cfg)

	repo := postgres.NewRepository(db)
	v := validator.New()
	gateway := payment.NewZiinaClient(payment.ZiinaConfig{
		BaseURL:  cfg.ZiinaAPIBase,
		APIKey:   cfg.ZiinaAPIKey,
		TestMode: cfg.ZiinaTestMode,
	})

	svcs := handlers.Services{
		Course:     services.NewCourseService(repo, logger, v, publisher),
		Quiz:       services.NewQuizService(repo, logger, v),
		Attempt:    services.NewAttemptService(repo, logger, cacheService, publisher),
		Analytics:  services.NewAnalyticsService(repo, logger, cacheService, time.Duration(cfg.StatsCacheTTLSeconds)*time.Second),
		Enrollment: services.NewEnrollmentService(repo, logger, publisher),
		Payment:    services.NewPaymentService(repo, gateway, logger, publisher),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlers.NewHandlerManager(svcs, repo, logger).SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
