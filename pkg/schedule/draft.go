package schedule

import (
	"fmt"
	"time"
)

// LocalLayout is the wall-clock format the form inputs produce. It carries no
// offset, so a value only means something together with a *time.Location.
const LocalLayout = "2006-01-02T15:04"

// Field names a single editable slot of the draft.
type Field string

const (
	FieldPatient      Field = "patient_id"
	FieldProfessional Field = "professional_id"
	FieldScheduledAt  Field = "scheduled_at"
	FieldDuration     Field = "duration_minutes"
	FieldType         Field = "appointment_type"
	FieldNotes        Field = "notes"
)

// Draft is the transient state of one appointment being created or edited.
// It lives only inside a Session and is discarded on close.
type Draft struct {
	AppointmentID   string
	PatientID       string
	ProfessionalID  string
	ScheduledAt     string // local wall-clock, LocalLayout
	DurationMinutes int
	Type            string
	Notes           string
}

// ValidationError reports a required field that was empty at submit time.
// It is produced and handled locally; no gateway call is made.
type ValidationError struct {
	Field Field
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %s is empty", e.Field)
}

// ToInstant interprets a wall-clock value in loc and returns the absolute
// instant. The naive string must never be transmitted directly.
func ToInstant(local string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(LocalLayout, local, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse local datetime %q: %w", local, err)
	}
	return t, nil
}

// FormatLocal renders an absolute instant as the wall-clock string the form
// inputs expect, in loc.
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(LocalLayout)
}
