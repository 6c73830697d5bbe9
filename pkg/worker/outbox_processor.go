package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/turnolab/scheduler-api/internal/model"
	"github.com/turnolab/scheduler-api/internal/repository"
	"github.com/turnolab/scheduler-api/pkg/messaging"
	"github.com/turnolab/scheduler-api/pkg/metrics"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = 5 * time.Second

	// maxPublishAttempts caps how often a failing event is requeued before it
	// is parked as failed.
	maxPublishAttempts = 5
)

// OutboxProcessor drains the outbox table and publishes events to the broker.
type OutboxProcessor struct {
	outbox       repository.OutboxRepository
	broker       messaging.Broker
	logger       zerolog.Logger
	metrics      *metrics.Metrics
	batchSize    int
	pollInterval time.Duration
}

type OutboxOption func(*OutboxProcessor)

func WithBatchSize(n int) OutboxOption {
	return func(p *OutboxProcessor) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func WithPollInterval(d time.Duration) OutboxOption {
	return func(p *OutboxProcessor) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

func NewOutboxProcessor(
	outbox repository.OutboxRepository,
	broker messaging.Broker,
	logger zerolog.Logger,
	m *metrics.Metrics,
	opts ...OutboxOption,
) *OutboxProcessor {
	p := &OutboxProcessor{
		outbox:       outbox,
		broker:       broker,
		logger:       logger.With().Str("component", "outbox_processor").Logger(),
		metrics:      m,
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start blocks until ctx is cancelled, polling for pending events.
func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.logger.Info().
		Dur("poll_interval", p.pollInterval).
		Int("batch_size", p.batchSize).
		Msg("outbox processor started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("outbox processor stopped")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error().Err(err).Msg("failed to process outbox batch")
			}
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	events, err := p.outbox.GetPendingEvents(ctx, p.batchSize)
	if err != nil {
		return err
	}

	for _, event := range events {
		p.processEvent(ctx, event)
	}
	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	if err := p.broker.Publish(ctx, event.EventType, event.Payload); err != nil {
		p.metrics.OutboxEventsFailed.Inc()

		// Requeue as pending until the attempt cap; the poll interval acts as
		// the backoff between attempts.
		status := model.OutboxStatusPending
		if event.RetryCount+1 >= maxPublishAttempts {
			status = model.OutboxStatusFailed
		}

		p.logger.Error().
			Err(err).
			Str("event_id", event.ID.String()).
			Str("event_type", event.EventType).
			Int("retry_count", event.RetryCount+1).
			Str("status", string(status)).
			Msg("failed to publish event")

		errMsg := err.Error()
		if uerr := p.outbox.UpdateStatus(ctx, event.ID, status, &errMsg); uerr != nil {
			p.logger.Error().Err(uerr).Str("event_id", event.ID.String()).Msg("failed to update event status")
		}
		return
	}

	if err := p.outbox.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); err != nil {
		p.logger.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to mark event processed")
		return
	}

	p.metrics.OutboxEventsProcessed.Inc()
	p.logger.Debug().
		Str("event_id", event.ID.String()).
		Str("event_type", event.EventType).
		Msg("event published")
}
