package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type AppointmentType string

const (
	AppointmentTypeCheckup   AppointmentType = "checkup"
	AppointmentTypeCleaning  AppointmentType = "cleaning"
	AppointmentTypeOrtho     AppointmentType = "ortho"
	AppointmentTypeSurgery   AppointmentType = "surgery"
	AppointmentTypeEmergency AppointmentType = "emergency"
)

type UrgencyLevel string

const (
	UrgencyNormal    UrgencyLevel = "normal"
	UrgencyHigh      UrgencyLevel = "high"
	UrgencyEmergency UrgencyLevel = "emergency"
)

// DurationOptions is the only set of slot lengths the product offers. The
// session controller and the API validate against the same list.
var DurationOptions = []int{15, 30, 45, 60, 90, 120}

const DefaultDurationMinutes = 30

func ValidDuration(minutes int) bool {
	for _, d := range DurationOptions {
		if d == minutes {
			return true
		}
	}
	return false
}

func ValidAppointmentType(t AppointmentType) bool {
	switch t {
	case AppointmentTypeCheckup, AppointmentTypeCleaning, AppointmentTypeOrtho,
		AppointmentTypeSurgery, AppointmentTypeEmergency:
		return true
	}
	return false
}

type Appointment struct {
	Base
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	ProfessionalID  uuid.UUID         `db:"professional_id" json:"professional_id"`
	StartTime       time.Time         `db:"start_time" json:"appointment_datetime"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	Type            AppointmentType   `db:"appointment_type" json:"appointment_type"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Urgency         UrgencyLevel      `db:"urgency" json:"urgency"`
	Notes           string            `db:"notes" json:"notes,omitempty"`
	PatientName     string            `db:"patient_name" json:"patient_name,omitempty"`
}

// EndTime derives the slot end from the stored duration.
func (a *Appointment) EndTime() time.Time {
	return a.StartTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

type CreateAppointmentRequest struct {
	PatientID       uuid.UUID       `json:"patient_id" binding:"required"`
	ProfessionalID  uuid.UUID       `json:"professional_id" binding:"required"`
	StartTime       time.Time       `json:"appointment_datetime" binding:"required"`
	DurationMinutes int             `json:"duration_minutes" binding:"required"`
	Type            AppointmentType `json:"appointment_type"`
	Urgency         UrgencyLevel    `json:"urgency"`
	Notes           string          `json:"notes"`
}

func (r *CreateAppointmentRequest) Validate() error {
	if !ValidDuration(r.DurationMinutes) {
		return fmt.Errorf("duration_minutes must be one of %v", DurationOptions)
	}
	if r.Type == "" {
		r.Type = AppointmentTypeCheckup
	}
	if !ValidAppointmentType(r.Type) {
		return fmt.Errorf("unknown appointment_type %q", r.Type)
	}
	return nil
}

type UpdateAppointmentRequest struct {
	PatientID       *uuid.UUID         `json:"patient_id"`
	ProfessionalID  *uuid.UUID         `json:"professional_id"`
	StartTime       *time.Time         `json:"appointment_datetime"`
	DurationMinutes *int               `json:"duration_minutes"`
	Type            *AppointmentType   `json:"appointment_type"`
	Status          *AppointmentStatus `json:"status"`
	Urgency         *UrgencyLevel      `json:"urgency"`
	Notes           *string            `json:"notes"`
}

type AppointmentFilters struct {
	ProfessionalID uuid.UUID
	PatientID      uuid.UUID
	Status         AppointmentStatus
	StartDate      time.Time
	EndDate        time.Time
}

// CollisionCheckResult is the wire shape of the collision-check endpoint. It is
// advisory data: the API reports overlaps, it never rejects a booking for them.
type CollisionCheckResult struct {
	HasCollisions           bool             `json:"has_collisions"`
	ConflictingAppointments []*Appointment   `json:"conflicting_appointments"`
	ConflictingBlocks       []*CalendarBlock `json:"conflicting_blocks"`
}
