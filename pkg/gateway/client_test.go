package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCollisionsQueryParams(t *testing.T) {
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/appointments/collision-check", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"has_collisions":false,"conflicting_appointments":[],"conflicting_blocks":[]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.CheckCollisions(context.Background(), CollisionQuery{
		ProfessionalID:       "prof-1",
		StartTime:            time.Date(2024, 3, 1, 11, 0, 0, 0, time.FixedZone("-03", -3*3600)),
		DurationMinutes:      45,
		ExcludeAppointmentID: "apt-9",
	})
	require.NoError(t, err)

	assert.False(t, result.HasCollisions)
	assert.Equal(t, "prof-1", gotQuery["professional_id"])
	assert.Equal(t, "2024-03-01T14:00:00Z", gotQuery["datetime_str"])
	assert.Equal(t, "45", gotQuery["duration_minutes"])
	assert.Equal(t, "apt-9", gotQuery["exclude_appointment_id"])
}

func TestCheckCollisionsOmitsEmptyExcludeID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["exclude_appointment_id"]
		assert.False(t, present)
		w.Write([]byte(`{"status":"success","data":{"has_collisions":false}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CheckCollisions(context.Background(), CollisionQuery{
		ProfessionalID:  "prof-1",
		StartTime:       time.Now(),
		DurationMinutes: 30,
	})
	require.NoError(t, err)
}

func TestCreateAppointmentUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/appointments", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"success","data":{"id":"apt-1","patient_id":"pat-1","appointment_datetime":"2024-03-01T14:00:00Z","duration_minutes":30}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	apt, err := c.CreateAppointment(context.Background(), &AppointmentRequest{
		PatientID:       "pat-1",
		ProfessionalID:  "prof-1",
		StartTime:       time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, "apt-1", apt.ID)
	assert.Equal(t, "pat-1", apt.PatientID)
	assert.Equal(t, 30, apt.DurationMinutes)
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr int
	}{
		{
			name:   "detail field preferred",
			status: http.StatusConflict,
			body:   `{"detail":"Slot taken","message":"ignored"}`,
			want:   "Slot taken",
		},
		{
			name:   "message fallback",
			status: http.StatusUnprocessableEntity,
			body:   `{"status":"error","message":"duration_minutes must be one of [15 30 45 60 90 120]"}`,
			want:   "duration_minutes must be one of [15 30 45 60 90 120]",
		},
		{
			name:   "unparseable body",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			want:   "Error de conexión con el servidor (HTTP 502)",
		},
		{
			name:   "empty json body",
			status: http.StatusInternalServerError,
			body:   `{}`,
			want:   "Error de conexión con el servidor (HTTP 500)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			_, err := c.CreateAppointment(context.Background(), &AppointmentRequest{})
			require.Error(t, err)

			var gerr *Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.status, gerr.Status)
			assert.Equal(t, tt.want, gerr.Message)
		})
	}
}

func TestUnreachableServer(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", WithTimeout(500*time.Millisecond))

	err := c.DeleteAppointment(context.Background(), "apt-1")
	require.Error(t, err)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, 0, gerr.Status)
	assert.Equal(t, "Error de conexión con el servidor", gerr.Message)
}

func TestListProfessionalsCached(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"status":"success","data":[{"id":"prof-1","name":"Dra. Gomez"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	first, err := c.ListProfessionals(context.Background())
	require.NoError(t, err)
	second, err := c.ListProfessionals(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, hits)
	require.Len(t, first, 1)
	assert.Equal(t, "Dra. Gomez", first[0].Name)
}
