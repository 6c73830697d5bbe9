package schedule

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/turnolab/scheduler-api/internal/model"
	"github.com/turnolab/scheduler-api/pkg/gateway"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// TabMain is the primary tab every Open resets to.
const TabMain = 0

// Gateway is the slice of the REST client the session needs. *gateway.Client
// satisfies it.
type Gateway interface {
	CreateAppointment(ctx context.Context, req *gateway.AppointmentRequest) (*gateway.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, req *gateway.AppointmentRequest) (*gateway.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error
	CheckCollisions(ctx context.Context, q gateway.CollisionQuery) (*gateway.CollisionResult, error)
}

// Session owns one appointment draft from Open until close. Field edits are
// pure state updates that return side-effect intents; the caller decides when
// to run them (see RunCollisionCheck). The draft is never written to by the
// advisory path, only the warning slot is.
type Session struct {
	mu     sync.Mutex
	gw     Gateway
	loc    *time.Location
	logger zerolog.Logger
	onDone func()

	mode        Mode
	isOpen      bool
	draft       Draft
	warning     string
	inlineError string
	activeTab   int

	// advisorySeq is the sequence number of the most recently issued
	// collision check. Responses carrying an older number are stale and
	// must be dropped.
	advisorySeq uint64
}

type SessionOption func(*Session)

// WithLocation sets the wall-clock zone used to interpret form input. It
// defaults to time.Local, matching a browser's behavior.
func WithLocation(loc *time.Location) SessionOption {
	return func(s *Session) {
		s.loc = loc
	}
}

func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithOnDone registers the completion callback invoked after a successful
// submit or delete, once the session has closed. Callers use it to refresh
// their listings.
func WithOnDone(fn func()) SessionOption {
	return func(s *Session) {
		s.onDone = fn
	}
}

func NewSession(gw Gateway, opts ...SessionOption) *Session {
	s := &Session{
		gw:     gw,
		loc:    time.Local,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open seeds the draft and fully replaces any previous session state. With a
// nil initial the session is in create mode: duration defaults and the first
// available professional is preselected. With an initial appointment the
// stored absolute instant is converted back to wall-clock fields.
func (s *Session) Open(initial *gateway.Appointment, professionals []gateway.Professional) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isOpen = true
	s.warning = ""
	s.inlineError = ""
	s.activeTab = TabMain
	s.advisorySeq++ // orphan any in-flight advisory from a previous session

	if initial == nil {
		s.mode = ModeCreate
		s.draft = Draft{
			DurationMinutes: model.DefaultDurationMinutes,
		}
		if len(professionals) > 0 {
			s.draft.ProfessionalID = professionals[0].ID
		}
		return
	}

	s.mode = ModeEdit
	s.draft = Draft{
		AppointmentID:   initial.ID,
		PatientID:       initial.PatientID,
		ProfessionalID:  initial.ProfessionalID,
		ScheduledAt:     FormatLocal(initial.StartTime, s.loc),
		DurationMinutes: initial.DurationMinutes,
		Type:            initial.Type,
		Notes:           initial.Notes,
	}
	if s.draft.DurationMinutes == 0 {
		s.draft.DurationMinutes = model.DefaultDurationMinutes
	}
}

// SetField updates exactly one draft field and returns the collision check
// the edit calls for, or nil. Only professional, datetime and duration edits
// qualify; the check is built from the merged draft, never the stale one.
func (s *Session) SetField(field Field, value string) *CollisionCheck {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isOpen {
		return nil
	}

	qualifies := false
	switch field {
	case FieldPatient:
		if s.mode == ModeEdit {
			return nil // patient is immutable once persisted
		}
		s.draft.PatientID = value
	case FieldProfessional:
		s.draft.ProfessionalID = value
		qualifies = true
	case FieldScheduledAt:
		s.draft.ScheduledAt = value
		qualifies = true
	case FieldDuration:
		minutes, err := strconv.Atoi(value)
		if err != nil || !model.ValidDuration(minutes) {
			return nil
		}
		s.draft.DurationMinutes = minutes
		qualifies = true
	case FieldType:
		s.draft.Type = value
	case FieldNotes:
		s.draft.Notes = value
	default:
		return nil
	}

	if !qualifies {
		return nil
	}
	return s.buildCollisionCheckLocked()
}

// buildCollisionCheckLocked issues a new sequence number for the current
// draft, or returns nil when the draft cannot be checked yet.
func (s *Session) buildCollisionCheckLocked() *CollisionCheck {
	if s.draft.ProfessionalID == "" || s.draft.ScheduledAt == "" {
		return nil
	}

	start, err := ToInstant(s.draft.ScheduledAt, s.loc)
	if err != nil {
		return nil
	}

	s.advisorySeq++
	return &CollisionCheck{
		seq: s.advisorySeq,
		Query: gateway.CollisionQuery{
			ProfessionalID:       s.draft.ProfessionalID,
			StartTime:            start,
			DurationMinutes:      s.draft.DurationMinutes,
			ExcludeAppointmentID: s.draft.AppointmentID,
		},
	}
}

// Submit validates the draft, converts the wall-clock datetime to an absolute
// instant and calls create or update. A validation failure returns before any
// gateway call. A gateway failure keeps the session open with the draft
// intact; only the inline error text changes.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if !s.isOpen {
		s.mu.Unlock()
		return fmt.Errorf("session is not open")
	}

	if err := s.validateLocked(); err != nil {
		s.inlineError = err.Error()
		s.mu.Unlock()
		return err
	}

	start, err := ToInstant(s.draft.ScheduledAt, s.loc)
	if err != nil {
		verr := &ValidationError{Field: FieldScheduledAt}
		s.inlineError = verr.Error()
		s.mu.Unlock()
		return verr
	}

	req := &gateway.AppointmentRequest{
		PatientID:       s.draft.PatientID,
		ProfessionalID:  s.draft.ProfessionalID,
		StartTime:       start.UTC(),
		DurationMinutes: s.draft.DurationMinutes,
		Type:            s.draft.Type,
		Notes:           s.draft.Notes,
	}
	id := s.draft.AppointmentID
	s.mu.Unlock()

	var submitErr error
	if id == "" {
		_, submitErr = s.gw.CreateAppointment(ctx, req)
	} else {
		_, submitErr = s.gw.UpdateAppointment(ctx, id, req)
	}

	s.mu.Lock()
	if submitErr != nil {
		s.inlineError = submitErr.Error()
		s.mu.Unlock()
		return submitErr
	}

	s.isOpen = false
	s.inlineError = ""
	done := s.onDone
	s.mu.Unlock()

	if done != nil {
		done()
	}
	return nil
}

func (s *Session) validateLocked() error {
	if s.draft.PatientID == "" {
		return &ValidationError{Field: FieldPatient}
	}
	if s.draft.ProfessionalID == "" {
		return &ValidationError{Field: FieldProfessional}
	}
	if s.draft.ScheduledAt == "" {
		return &ValidationError{Field: FieldScheduledAt}
	}
	return nil
}

// RequestDelete deletes the persisted appointment after the confirm callback
// approves it. Only edit sessions can delete. A gateway failure is logged and
// leaves the session untouched; there is deliberately no inline error here.
func (s *Session) RequestDelete(ctx context.Context, confirm func() bool) error {
	s.mu.Lock()
	if !s.isOpen || s.mode != ModeEdit || s.draft.AppointmentID == "" {
		s.mu.Unlock()
		return fmt.Errorf("nothing to delete")
	}
	id := s.draft.AppointmentID
	s.mu.Unlock()

	if confirm == nil || !confirm() {
		return nil
	}

	if err := s.gw.DeleteAppointment(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("appointment_id", id).Msg("delete failed")
		return err
	}

	s.mu.Lock()
	s.isOpen = false
	done := s.onDone
	s.mu.Unlock()

	if done != nil {
		done()
	}
	return nil
}

// Cancel discards the draft with no confirmation and no network calls.
// An Escape keypress maps here. Any in-flight advisory response is orphaned.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = false
}

func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Draft returns a copy; callers cannot mutate session state through it.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *Session) Warning() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

func (s *Session) InlineError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inlineError
}

func (s *Session) ActiveTab() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTab
}

func (s *Session) SetActiveTab(tab int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTab = tab
}
