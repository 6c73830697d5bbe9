package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turnolab/scheduler-api/internal/config"
	"github.com/turnolab/scheduler-api/internal/handler"
	appointmentH "github.com/turnolab/scheduler-api/internal/handler/appointment"
	blockH "github.com/turnolab/scheduler-api/internal/handler/block"
	patientH "github.com/turnolab/scheduler-api/internal/handler/patient"
	professionalH "github.com/turnolab/scheduler-api/internal/handler/professional"
	"github.com/turnolab/scheduler-api/internal/middleware"
	"github.com/turnolab/scheduler-api/internal/repository/postgres"
	"github.com/turnolab/scheduler-api/internal/router"
	appointmentS "github.com/turnolab/scheduler-api/internal/service/appointment"
	blockS "github.com/turnolab/scheduler-api/internal/service/block"
	"github.com/turnolab/scheduler-api/internal/service/notification"
	patientS "github.com/turnolab/scheduler-api/internal/service/patient"
	professionalS "github.com/turnolab/scheduler-api/internal/service/professional"
	"github.com/turnolab/scheduler-api/pkg/auth"
	"github.com/turnolab/scheduler-api/pkg/logger"
	redisbroker "github.com/turnolab/scheduler-api/pkg/messaging/redis"
	"github.com/turnolab/scheduler-api/pkg/metrics"
	"github.com/turnolab/scheduler-api/pkg/validator"
	"github.com/turnolab/scheduler-api/pkg/worker"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("scheduler", "api")

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	professionalRepo := postgres.NewProfessionalRepository(db)
	blockRepo := postgres.NewCalendarBlockRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	v, err := validator.New()
	if err != nil {
		log.Fatal(err, "failed to build validator")
	}

	notifier := notification.NewService(cfg.SMTP, patientRepo, *log.Zerolog())
	appointmentSvc := appointmentS.NewService(appointmentRepo, blockRepo, outboxRepo, notifier, m)
	patientSvc := patientS.NewService(patientRepo)
	professionalSvc := professionalS.NewService(professionalRepo)
	blockSvc := blockS.NewService(blockRepo, v)

	// Handlers
	h := handler.NewHandler(db.Ping)
	appointmentHandler := appointmentH.NewHandler(appointmentSvc)
	patientHandler := patientH.NewHandler(patientSvc)
	professionalHandler := professionalH.NewHandler(professionalSvc)
	blockHandler := blockH.NewHandler(blockSvc)

	var authMW gin.HandlerFunc
	if !cfg.Auth.Disabled {
		tokens := auth.NewTokenService(cfg.Auth.Secret, time.Duration(cfg.Auth.ExpiryHours)*time.Hour)
		authMW = middleware.Auth(tokens)
	}

	r := router.NewRouter(
		authMW,
		appointmentHandler,
		patientHandler,
		professionalHandler,
		blockHandler,
		h,
		router.Config{
			RateLimitRPS:   float64(cfg.Server.RateLimitRPS),
			RateLimitBurst: cfg.Server.RateLimitBurst,
			Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:     middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outbox events are drained in-process when redis is configured. The
	// standalone worker binary covers deployments that split this out.
	if cfg.Redis.URL != "" {
		broker, err := redisbroker.NewRedisBroker(cfg.Redis, log.Zerolog())
		if err != nil {
			log.Fatal(err, "failed to connect to redis")
		}
		defer broker.Close()

		processor := worker.NewOutboxProcessor(outboxRepo, broker, *log.Zerolog(), m)
		go processor.Start(ctx)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited")
}
