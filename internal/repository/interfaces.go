package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turnolab/scheduler-api/internal/model"
)

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		FindOverlapping(ctx context.Context, professionalID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		List(ctx context.Context) ([]*model.Patient, error)
	}

	ProfessionalRepository interface {
		Create(ctx context.Context, professional *model.Professional) error
		Get(ctx context.Context, id uuid.UUID) (*model.Professional, error)
		List(ctx context.Context) ([]*model.Professional, error)
	}

	CalendarBlockRepository interface {
		Upsert(ctx context.Context, block *model.CalendarBlock) error
		List(ctx context.Context, professionalID uuid.UUID, start, end time.Time) ([]*model.CalendarBlock, error)
		FindOverlapping(ctx context.Context, professionalID uuid.UUID, start, end time.Time) ([]*model.CalendarBlock, error)
		DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}
)
