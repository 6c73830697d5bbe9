package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/turnolab/scheduler-api/internal/model"
	"github.com/turnolab/scheduler-api/internal/repository"
	"github.com/turnolab/scheduler-api/internal/service/notification"
	"github.com/turnolab/scheduler-api/pkg/metrics"
)

const (
	eventAppointmentCreated   = "appointment_created"
	eventAppointmentUpdated   = "appointment_updated"
	eventAppointmentCancelled = "appointment_cancelled"
	eventAppointmentDeleted   = "appointment_deleted"
)

type Service struct {
	repo      repository.AppointmentRepository
	blockRepo repository.CalendarBlockRepository
	outbox    repository.OutboxRepository
	notifier  notification.Service
	metrics   *metrics.Metrics
}

func NewService(
	repo repository.AppointmentRepository,
	blockRepo repository.CalendarBlockRepository,
	outbox repository.OutboxRepository,
	notifier notification.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:      repo,
		blockRepo: blockRepo,
		outbox:    outbox,
		notifier:  notifier,
		metrics:   m,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid appointment: %w", err)
	}

	apt := &model.Appointment{
		PatientID:       req.PatientID,
		ProfessionalID:  req.ProfessionalID,
		StartTime:       req.StartTime.UTC(),
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		Status:          model.AppointmentStatusScheduled,
		Urgency:         req.Urgency,
		Notes:           req.Notes,
	}
	if apt.Urgency == "" {
		apt.Urgency = model.UrgencyNormal
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.emitEvent(ctx, eventAppointmentCreated, apt)
	s.notifier.AppointmentCreated(ctx, apt)

	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	if req.PatientID != nil {
		apt.PatientID = *req.PatientID
	}
	if req.ProfessionalID != nil {
		apt.ProfessionalID = *req.ProfessionalID
	}
	if req.StartTime != nil {
		apt.StartTime = req.StartTime.UTC()
	}
	if req.DurationMinutes != nil {
		if !model.ValidDuration(*req.DurationMinutes) {
			return nil, fmt.Errorf("duration_minutes must be one of %v", model.DurationOptions)
		}
		apt.DurationMinutes = *req.DurationMinutes
	}
	if req.Type != nil {
		if !model.ValidAppointmentType(*req.Type) {
			return nil, fmt.Errorf("unknown appointment_type %q", *req.Type)
		}
		apt.Type = *req.Type
	}
	if req.Status != nil {
		apt.Status = *req.Status
	}
	if req.Urgency != nil {
		apt.Urgency = *req.Urgency
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	event := eventAppointmentUpdated
	if req.Status != nil && *req.Status == model.AppointmentStatusCancelled {
		event = eventAppointmentCancelled
		s.notifier.AppointmentCancelled(ctx, apt)
	}
	s.emitEvent(ctx, event, apt)

	return apt, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get appointment: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.emitEvent(ctx, eventAppointmentDeleted, apt)
	s.notifier.AppointmentCancelled(ctx, apt)
	return nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// CheckCollisions reports whether the candidate slot overlaps an active
// appointment for the professional or an imported calendar block. The result
// is advisory: booking is never rejected because of it.
func (s *Service) CheckCollisions(ctx context.Context, professionalID uuid.UUID, start time.Time, durationMinutes int, excludeID *uuid.UUID) (*model.CollisionCheckResult, error) {
	if !model.ValidDuration(durationMinutes) {
		return nil, fmt.Errorf("duration_minutes must be one of %v", model.DurationOptions)
	}

	timer := prometheus.NewTimer(s.metrics.CollisionCheckLatency)
	defer timer.ObserveDuration()

	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	appointments, err := s.repo.FindOverlapping(ctx, professionalID, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping appointments: %w", err)
	}

	blocks, err := s.blockRepo.FindOverlapping(ctx, professionalID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping blocks: %w", err)
	}

	result := &model.CollisionCheckResult{
		HasCollisions:           len(appointments) > 0 || len(blocks) > 0,
		ConflictingAppointments: appointments,
		ConflictingBlocks:       blocks,
	}
	if result.ConflictingAppointments == nil {
		result.ConflictingAppointments = []*model.Appointment{}
	}
	if result.ConflictingBlocks == nil {
		result.ConflictingBlocks = []*model.CalendarBlock{}
	}

	label := "clear"
	if result.HasCollisions {
		label = "collision"
	}
	s.metrics.CollisionChecksTotal.WithLabelValues(label).Inc()

	return result, nil
}

// emitEvent records the mutation in the outbox; the worker publishes it to
// the broker later. Outbox failures must not fail the mutation itself.
func (s *Service) emitEvent(ctx context.Context, eventType string, apt *model.Appointment) {
	payload, err := json.Marshal(apt)
	if err != nil {
		return
	}
	_ = s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	})
}
