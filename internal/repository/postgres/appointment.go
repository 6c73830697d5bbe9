package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turnolab/scheduler-api/internal/model"
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, professional_id, start_time,
			duration_minutes, appointment_type, status, urgency, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.ProfessionalID,
		appointment.StartTime,
		appointment.DurationMinutes,
		appointment.Type,
		appointment.Status,
		appointment.Urgency,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.professional_id, a.start_time,
			   a.duration_minutes, a.appointment_type, a.status, a.urgency, a.notes,
			   a.created_at, a.updated_at, p.name AS patient_name
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, professional_id = $2, start_time = $3,
			duration_minutes = $4, appointment_type = $5, status = $6,
			urgency = $7, notes = $8, updated_at = $9
		WHERE id = $10
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.PatientID,
		appointment.ProfessionalID,
		appointment.StartTime,
		appointment.DurationMinutes,
		appointment.Type,
		appointment.Status,
		appointment.Urgency,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM appointments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.professional_id, a.start_time,
			   a.duration_minutes, a.appointment_type, a.status, a.urgency, a.notes,
			   a.created_at, a.updated_at, p.name AS patient_name
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.ProfessionalID != uuid.Nil {
		query += fmt.Sprintf(" AND a.professional_id = $%d", argCount)
		args = append(args, filters.ProfessionalID)
		argCount++
	}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND a.patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND a.status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND a.start_time >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND a.start_time < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY a.start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// FindOverlapping returns active appointments for the professional whose slot
// intersects [start, end). Cancelled and completed appointments never collide.
func (r *appointmentRepository) FindOverlapping(ctx context.Context, professionalID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.professional_id, a.start_time,
			   a.duration_minutes, a.appointment_type, a.status, a.urgency, a.notes,
			   a.created_at, a.updated_at, p.name AS patient_name
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.professional_id = $1
		AND a.status NOT IN ('cancelled', 'completed')
		AND a.start_time < $3
		AND a.start_time + (a.duration_minutes * interval '1 minute') > $2
	`
	args := []interface{}{professionalID, start, end}

	if excludeID != nil {
		query += " AND a.id != $4"
		args = append(args, *excludeID)
	}

	query += " ORDER BY a.start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping appointments: %w", err)
	}
	return appointments, nil
}
