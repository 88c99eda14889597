package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/okulab/therapy-api/internal/config"
	"github.com/okulab/therapy-api/internal/handler"
	adminHandler "github.com/okulab/therapy-api/internal/handler/admin"
	authHandler "github.com/okulab/therapy-api/internal/handler/auth"
	therapyHandler "github.com/okulab/therapy-api/internal/handler/therapy"
	"github.com/okulab/therapy-api/internal/middleware"
	"github.com/okulab/therapy-api/internal/protocol"
	"github.com/okulab/therapy-api/internal/repository/postgres"
	"github.com/okulab/therapy-api/internal/router"
	authService "github.com/okulab/therapy-api/internal/service/auth"
	intakeService "github.com/okulab/therapy-api/internal/service/intake"
	"github.com/okulab/therapy-api/internal/service/notification"
	sessionService "github.com/okulab/therapy-api/internal/service/session"
	therapyService "github.com/okulab/therapy-api/internal/service/therapy"
	"github.com/okulab/therapy-api/internal/worker"
	pkgauth "github.com/okulab/therapy-api/pkg/auth"
	"github.com/okulab/therapy-api/pkg/logger"
	"github.com/okulab/therapy-api/pkg/messaging/redis"
	"github.com/okulab/therapy-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Protocol registry is built once and immutable afterwards
	registry := protocol.NewRegistry()

	jwtSvc := pkgauth.NewJWTService(cfg.JWT.Secret, authService.TokenExpiry(cfg.JWT.ExpiryHours), cfg.JWT.Issuer)

	var mailer notification.Mailer
	if cfg.SMTP.Enabled {
		mailer = notification.NewSMTPMailer(cfg.SMTP)
	} else {
		mailer = notification.NewNoopMailer()
	}
	notifier := notification.NewService(mailer, appLogger)

	// Services
	authSvc := authService.NewService(userRepo, jwtSvc)
	intakeSvc := intakeService.NewService(userRepo, outboxRepo, notifier, appLogger)
	therapySvc := therapyService.NewService(prescriptionRepo, userRepo, registry, notifier, appLogger)
	sessionSvc := sessionService.NewService(sessionRepo, userRepo, appLogger)

	// Transport
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	r := router.NewRouter(
		router.Config{
			RateLimit: middleware.RateLimiterConfig{
				RPS:   rate.Limit(cfg.RateLimit.RPS),
				Burst: cfg.RateLimit.Burst,
			},
			CORS:          middleware.DefaultCORSConfig(),
			MetricsPrefix: "okulab",
		},
		authHandler.NewHandler(authSvc, intakeSvc, authMiddleware),
		therapyHandler.NewHandler(therapySvc, sessionSvc, authMiddleware),
		adminHandler.NewHandler(authSvc, authMiddleware),
	)
	r.Engine().GET("/health", handler.NewHealthHandler(db).Health)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Outbox worker publishes staged domain events to Redis
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxProcessor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  time.Duration(cfg.Outbox.PollIntervalSeconds) * time.Second,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    time.Duration(cfg.Outbox.RetryDelaySeconds) * time.Second,
		},
		appLogger,
		metrics.NewMetrics("okulab", "worker"),
	)
	go outboxProcessor.Start(workerCtx)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
