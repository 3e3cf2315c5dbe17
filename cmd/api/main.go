package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"ceoacademy/internal/app"
	"ceoacademy/internal/config"
	"ceoacademy/internal/database"
	apphttp "ceoacademy/internal/http"
	"ceoacademy/internal/http/handlers"
	"ceoacademy/internal/http/metrics"
	httpmw "ceoacademy/internal/http/middleware"
	"ceoacademy/internal/http/response"
	"ceoacademy/internal/observability"
	"ceoacademy/internal/repository/postgres"
	"ceoacademy/internal/security"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()
	response.SetLogger(logger)

	db := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	defer db.Close()

	applicationRepo := postgres.NewApplicationRepository(db)
	reviewerRepo := postgres.NewReviewerRepository(db)

	applicationService := app.NewApplicationService(applicationRepo, reviewerRepo, logger)
	statsService := app.NewStatsService(applicationRepo)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)

	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	if cfg.RedisAddr != "" {
		limiter = httpmw.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	collector := metrics.NewCollector()

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		ApplicationHandler: handlers.NewApplicationHandler(applicationService, collector),
		StatsHandler:       handlers.NewStatsHandler(statsService),
		AuthMiddleware:     httpmw.NewAuthMiddleware(jwtProvider),
		Metrics:            collector,
		Limiter:            limiter,
		Logger:             logger,
		RequestTimeout:     cfg.RequestTimeout,
		SubmitRateLimit:    cfg.SubmitRateLimit,
		SubmitRateWindow:   cfg.SubmitRateWindow,
		AllowedOrigin:      cfg.AllowedOrigin,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
