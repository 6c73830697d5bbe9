package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnolab/scheduler-api/pkg/gateway"
)

type fakeGateway struct {
	mu sync.Mutex

	createReqs []*gateway.AppointmentRequest
	updateIDs  []string
	updateReqs []*gateway.AppointmentRequest
	deleteIDs  []string
	queries    []gateway.CollisionQuery

	createErr    error
	updateErr    error
	deleteErr    error
	collisionErr error
	result       *gateway.CollisionResult
}

func (f *fakeGateway) CreateAppointment(ctx context.Context, req *gateway.AppointmentRequest) (*gateway.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createReqs = append(f.createReqs, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &gateway.Appointment{ID: "apt-1"}, nil
}

func (f *fakeGateway) UpdateAppointment(ctx context.Context, id string, req *gateway.AppointmentRequest) (*gateway.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateIDs = append(f.updateIDs, id)
	f.updateReqs = append(f.updateReqs, req)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &gateway.Appointment{ID: id}, nil
}

func (f *fakeGateway) DeleteAppointment(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteIDs = append(f.deleteIDs, id)
	return f.deleteErr
}

func (f *fakeGateway) CheckCollisions(ctx context.Context, q gateway.CollisionQuery) (*gateway.CollisionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.collisionErr != nil {
		return nil, f.collisionErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &gateway.CollisionResult{}, nil
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createReqs) + len(f.updateReqs) + len(f.deleteIDs) + len(f.queries)
}

var testZone = time.FixedZone("-03", -3*60*60)

func TestOpenCreateDefaults(t *testing.T) {
	gw := &fakeGateway{}
	s := NewSession(gw, WithLocation(testZone))

	s.Open(nil, []gateway.Professional{
		{ID: "prof-1", Name: "Dra. Gomez"},
		{ID: "prof-2", Name: "Dr. Ruiz"},
	})

	require.True(t, s.IsOpen())
	assert.Equal(t, ModeCreate, s.Mode())
	assert.Equal(t, TabMain, s.ActiveTab())

	draft := s.Draft()
	assert.Equal(t, 30, draft.DurationMinutes)
	assert.Equal(t, "prof-1", draft.ProfessionalID)
	assert.Empty(t, draft.AppointmentID)
	assert.Empty(t, draft.ScheduledAt)
	assert.Zero(t, gw.callCount())
}

func TestOpenCreateNoProfessionals(t *testing.T) {
	s := NewSession(&fakeGateway{})
	s.Open(nil, nil)

	assert.Empty(t, s.Draft().ProfessionalID)
	assert.Equal(t, 30, s.Draft().DurationMinutes)
}

func TestOpenEditSeedsWallClockFromInstant(t *testing.T) {
	s := NewSession(&fakeGateway{}, WithLocation(testZone))

	s.Open(&gateway.Appointment{
		ID:              "apt-9",
		PatientID:       "pat-1",
		ProfessionalID:  "prof-2",
		StartTime:       time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
		DurationMinutes: 45,
		Type:            "cleaning",
		Notes:           "control",
	}, nil)

	require.Equal(t, ModeEdit, s.Mode())
	draft := s.Draft()
	assert.Equal(t, "apt-9", draft.AppointmentID)
	assert.Equal(t, "2024-03-01T11:00", draft.ScheduledAt)
	assert.Equal(t, 45, draft.DurationMinutes)
	assert.Equal(t, "cleaning", draft.Type)
}

func TestOpenResetsPreviousState(t *testing.T) {
	s := NewSession(&fakeGateway{}, WithLocation(testZone))

	s.Open(nil, []gateway.Professional{{ID: "prof-1"}})
	s.SetField(FieldNotes, "leftover")
	s.SetActiveTab(2)
	s.Cancel()

	s.Open(nil, []gateway.Professional{{ID: "prof-1"}})
	assert.Empty(t, s.Draft().Notes)
	assert.Equal(t, TabMain, s.ActiveTab())
	assert.Empty(t, s.Warning())
	assert.Empty(t, s.InlineError())
}

func TestOpenThenCancelMakesNoCalls(t *testing.T) {
	gw := &fakeGateway{}
	s := NewSession(gw, WithLocation(testZone))

	s.Open(nil, []gateway.Professional{{ID: "prof-1"}})
	s.Cancel()

	assert.False(t, s.IsOpen())
	assert.Zero(t, gw.callCount())
}

func TestSetFieldCollisionCheckIntents(t *testing.T) {
	s := NewSession(&fakeGateway{}, WithLocation(testZone))
	s.Open(nil, []gateway.Professional{{ID: "prof-1"}})

	// No datetime yet: a professional edit cannot produce a runnable check.
	assert.Nil(t, s.SetField(FieldProfessional, "prof-2"))

	check := s.SetField(FieldScheduledAt, "2024-03-01T11:00")
	require.NotNil(t, check)
	assert.Equal(t, "prof-2", check.Query.ProfessionalID)
	assert.True(t, check.Query.StartTime.Equal(time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, check.Query.DurationMinutes)
	assert.Empty(t, check.Query.ExcludeAppointmentID)

	check = s.SetField(FieldDuration, "60")
	require.NotNil(t, check)
	assert.Equal(t, 60, check.Query.DurationMinutes)

	// Non-qualifying edits never produce a check.
	assert.Nil(t, s.SetField(FieldNotes, "caries"))
	assert.Nil(t, s.SetField(FieldType, "ortho"))
	assert.Nil(t, s.SetField(FieldPatient, "pat-1"))
}

func TestSetFieldInvalidDurationIgnored(t *testing.T) {
	s := NewSession(&fakeGateway{}, WithLocation(testZone))
	s.Open(nil, []gateway.Professional{{ID: "prof-1"}})
	s.SetField(FieldScheduledAt, "2024-03-01T11:00")

	assert.Nil(t, s.SetField(FieldDuration, "17"))
	assert.Nil(t, s.SetField(FieldDuration, "abc"))
	assert.Equal(t, 30, s.Draft().DurationMinutes)
}

func TestSetFieldUnparseableDatetimeNoCheck(t *testing.T) {
	s := NewSession(&fakeGateway{}, WithLocation(testZone))
	s.Open(nil, []gateway.Professional{{ID: "prof-1"}})

	assert.Nil(t, s.SetField(FieldScheduledAt, "not-a-date"))
	assert.Equal(t, "not-a-date", s.Draft().ScheduledAt)
}

func TestSetFieldPatientImmutableInEdit(t *testing.T) {
	s := NewSession(&fakeGateway{}, WithLocation(testZone))
	s.Open(&gateway.Appointment{
		ID:        "apt-9",
		PatientID: "pat-1",
		StartTime: time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
	}, nil)

	assert.Nil(t, s.SetField(FieldPatient, "pat-2"))
	assert.Equal(t, "pat-1", s.Draft().PatientID)
}

func TestSetFieldIncludesExcludeIDInEdit(t *testing.T) {
	s := NewSession(&fakeGateway{}, WithLocation(testZone))
	s.Open(&gateway.Appointment{
		ID:             "apt-9",
		PatientID:      "pat-1",
		ProfessionalID: "prof-1",
		StartTime:      time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
	}, nil)

	check := s.SetField(FieldDuration, "45")
	require.NotNil(t, check)
	assert.Equal(t, "apt-9", check.Query.ExcludeAppointmentID)
}

func TestSubmitValidationFailsBeforeGateway(t *testing.T) {
	gw := &fakeGateway{}
	s := NewSession(gw, WithLocation(testZone))
	s.Open(nil, []gateway.Professional{{ID: "prof-1"}})
	s.SetField(FieldScheduledAt, "2024-03-01T11:00")

	err := s.Submit(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldPatient, verr.Field)
	assert.True(t, s.IsOpen())
	assert.Equal(t, verr.Error(), s.InlineError())
	assert.Zero(t, gw.callCount())
}

func TestSubmitCreateConvertsWallClockToUTC(t *testing.T) {
	gw := &fakeGateway{}
	var doneCalled bool
	s := NewSession(gw, WithLocation(testZone), WithOnDone(func() { doneCalled = true }))

	s.Open(nil, []gateway.Professional{{ID: "prof-1"}})
	s.SetField(FieldPatient, "pat-1")
	s.SetField(FieldScheduledAt, "2024-03-01T11:00")
	s.SetField(FieldNotes, "primera visita")

	require.NoError(t, s.Submit(context.Background()))

	require.Len(t, gw.createReqs, 1)
	req := gw.createReqs[0]
	assert.True(t, req.StartTime.Equal(time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)))
	assert.Equal(t, "pat-1", req.PatientID)
	assert.Equal(t, "prof-1", req.ProfessionalID)
	assert.Equal(t, 30, req.DurationMinutes)
	assert.Equal(t, "primera visita", req.Notes)

	assert.False(t, s.IsOpen())
	assert.True(t, doneCalled)
	assert.Empty(t, gw.updateReqs)
}

func TestSubmitEditCallsUpdate(t *testing.T) {
	gw := &fakeGateway{}
	s := NewSession(gw, WithLocation(testZone))
	s.Open(&gateway.Appointment{
		ID:             "apt-9",
		PatientID:      "pat-1",
		ProfessionalID: "prof-1",
		StartTime:      time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
	}, nil)

	require.NoError(t, s.Submit(context.Background()))

	require.Len(t, gw.updateIDs, 1)
	assert.Equal(t, "apt-9", gw.updateIDs[0])
	assert.Empty(t, gw.createReqs)
}

func TestSubmitFailureKeepsSessionOpen(t *testing.T) {
	gw := &fakeGateway{createErr: &gateway.Error{Status: 422, Message: "Slot taken"}}
	s := NewSession(gw, WithLocation(testZone))

	s.Open(nil, []gateway.Professional{{ID: "prof-1"}})
	s.SetField(FieldPatient, "pat-1")
	s.SetField(FieldScheduledAt, "2024-03-01T11:00")

	err := s.Submit(context.Background())
	require.Error(t, err)

	assert.True(t, s.IsOpen())
	assert.Equal(t, "Slot taken", s.InlineError())
	assert.Equal(t, "pat-1", s.Draft().PatientID)
	assert.Equal(t, "2024-03-01T11:00", s.Draft().ScheduledAt)

	// Retry after the server recovers clears the inline error and closes.
	gw.createErr = nil
	require.NoError(t, s.Submit(context.Background()))
	assert.False(t, s.IsOpen())
	assert.Empty(t, s.InlineError())
}

func TestSubmitClosedSession(t *testing.T) {
	s := NewSession(&fakeGateway{}, WithLocation(testZone))
	assert.Error(t, s.Submit(context.Background()))
}

func TestRequestDeleteConfirmDeclined(t *testing.T) {
	gw := &fakeGateway{}
	s := NewSession(gw, WithLocation(testZone))
	s.Open(&gateway.Appointment{
		ID:        "apt-9",
		PatientID: "pat-1",
		StartTime: time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
	}, nil)

	require.NoError(t, s.RequestDelete(context.Background(), func() bool { return false }))

	assert.True(t, s.IsOpen())
	assert.Empty(t, gw.deleteIDs)
}

func TestRequestDeleteConfirmed(t *testing.T) {
	gw := &fakeGateway{}
	var doneCalled bool
	s := NewSession(gw, WithLocation(testZone), WithOnDone(func() { doneCalled = true }))
	s.Open(&gateway.Appointment{
		ID:        "apt-9",
		PatientID: "pat-1",
		StartTime: time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
	}, nil)

	require.NoError(t, s.RequestDelete(context.Background(), func() bool { return true }))

	assert.Equal(t, []string{"apt-9"}, gw.deleteIDs)
	assert.False(t, s.IsOpen())
	assert.True(t, doneCalled)
}

func TestRequestDeleteFailureLeavesSessionOpen(t *testing.T) {
	gw := &fakeGateway{deleteErr: errors.New("boom")}
	s := NewSession(gw, WithLocation(testZone))
	s.Open(&gateway.Appointment{
		ID:        "apt-9",
		PatientID: "pat-1",
		StartTime: time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
	}, nil)

	require.Error(t, s.RequestDelete(context.Background(), func() bool { return true }))

	assert.True(t, s.IsOpen())
	assert.Empty(t, s.InlineError())
}

func TestRequestDeleteCreateMode(t *testing.T) {
	s := NewSession(&fakeGateway{}, WithLocation(testZone))
	s.Open(nil, []gateway.Professional{{ID: "prof-1"}})

	assert.Error(t, s.RequestDelete(context.Background(), func() bool { return true }))
}

func TestWallClockRoundTrip(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		testZone,
		time.FixedZone("+05:30", 5*3600+1800),
	}

	for _, loc := range zones {
		local := "2024-11-23T09:15"
		instant, err := ToInstant(local, loc)
		require.NoError(t, err)
		assert.Equal(t, local, FormatLocal(instant, loc), "zone %s", loc)
	}
}
