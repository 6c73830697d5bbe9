package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"

	"github.com/turnolab/scheduler-api/internal/config"
	"github.com/turnolab/scheduler-api/internal/repository/postgres"
	"github.com/turnolab/scheduler-api/pkg/logger"
	redisbroker "github.com/turnolab/scheduler-api/pkg/messaging/redis"
	"github.com/turnolab/scheduler-api/pkg/metrics"
	"github.com/turnolab/scheduler-api/pkg/worker"
)

// workerSettings tunes the standalone worker through environment variables.
type workerSettings struct {
	PollInterval    time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"5s"`
	BatchSize       int           `envconfig:"WORKER_BATCH_SIZE" default:"100"`
	OutboxRetention time.Duration `envconfig:"WORKER_OUTBOX_RETENTION" default:"168h"`
	BlockRetention  time.Duration `envconfig:"WORKER_BLOCK_RETENTION" default:"720h"`
	MaintenanceCron string        `envconfig:"WORKER_MAINTENANCE_CRON" default:"0 3 * * *"`
}

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	var settings workerSettings
	if err := envconfig.Process("", &settings); err != nil {
		log.Fatal(err, "failed to load worker settings")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(cfg.Redis, log.Zerolog())
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("scheduler", "worker")

	outboxRepo := postgres.NewOutboxRepository(db)
	blockRepo := postgres.NewCalendarBlockRepository(db)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		*log.Zerolog(),
		m,
		worker.WithBatchSize(settings.BatchSize),
		worker.WithPollInterval(settings.PollInterval),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Start(ctx)

	c := cron.New()
	_, err = c.AddFunc(settings.MaintenanceCron, func() {
		jobCtx, jobCancel := context.WithTimeout(ctx, 5*time.Minute)
		defer jobCancel()

		purged, err := outboxRepo.DeleteProcessedBefore(jobCtx, time.Now().Add(-settings.OutboxRetention))
		if err != nil {
			log.Error(err, "failed to purge processed outbox events")
		} else {
			m.OutboxEventsPurged.Add(float64(purged))
			log.Info("purged processed outbox events", "count", purged)
		}

		purged, err = blockRepo.DeleteEndedBefore(jobCtx, time.Now().Add(-settings.BlockRetention))
		if err != nil {
			log.Error(err, "failed to purge ended calendar blocks")
		} else {
			m.BlocksPurged.Add(float64(purged))
			log.Info("purged ended calendar blocks", "count", purged)
		}
	})
	if err != nil {
		log.Fatal(err, "failed to schedule maintenance job")
	}
	c.Start()
	defer c.Stop()

	log.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("worker shutting down")
	cancel()
}
