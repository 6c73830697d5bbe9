package model

import (
	"time"

	"github.com/google/uuid"
)

// CalendarBlock is a busy interval imported from an external calendar
// (typically Google Calendar). Blocks are rendered and reported by the
// collision check but never owned or edited through this API beyond import.
type CalendarBlock struct {
	Base
	ProfessionalID uuid.UUID `db:"professional_id" json:"professional_id"`
	StartTime      time.Time `db:"start_time" json:"start_time"`
	EndTime        time.Time `db:"end_time" json:"end_time"`
	Source         string    `db:"source" json:"source"`
	Summary        string    `db:"summary" json:"summary,omitempty"`
	ExternalID     string    `db:"external_id" json:"external_id,omitempty"`
}

type ImportCalendarBlockRequest struct {
	ProfessionalID uuid.UUID `json:"professional_id" binding:"required" validate:"required"`
	StartTime      time.Time `json:"start_time" binding:"required" validate:"required"`
	EndTime        time.Time `json:"end_time" binding:"required" validate:"required,gtfield=StartTime"`
	Source         string    `json:"source" binding:"required" validate:"required"`
	Summary        string    `json:"summary"`
	ExternalID     string    `json:"external_id"`
}
