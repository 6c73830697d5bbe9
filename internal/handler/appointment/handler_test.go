package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnolab/scheduler-api/internal/model"
)

type fakeService struct {
	collisionResult *model.CollisionCheckResult
	collisionErr    error

	lastProfessionalID uuid.UUID
	lastStart          time.Time
	lastDuration       int
	lastExcludeID      *uuid.UUID

	created *model.Appointment
}

func (f *fakeService) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	apt := &model.Appointment{
		PatientID:       req.PatientID,
		ProfessionalID:  req.ProfessionalID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		Status:          model.AppointmentStatusScheduled,
	}
	apt.ID = uuid.New()
	f.created = apt
	return apt, nil
}

func (f *fakeService) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, fmt.Errorf("appointment not found")
}

func (f *fakeService) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	return &model.Appointment{}, nil
}

func (f *fakeService) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeService) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return []*model.Appointment{}, nil
}

func (f *fakeService) CheckCollisions(ctx context.Context, professionalID uuid.UUID, start time.Time, durationMinutes int, excludeID *uuid.UUID) (*model.CollisionCheckResult, error) {
	f.lastProfessionalID = professionalID
	f.lastStart = start
	f.lastDuration = durationMinutes
	f.lastExcludeID = excludeID
	if f.collisionErr != nil {
		return nil, f.collisionErr
	}
	if f.collisionResult != nil {
		return f.collisionResult, nil
	}
	return &model.CollisionCheckResult{
		ConflictingAppointments: []*model.Appointment{},
		ConflictingBlocks:       []*model.CalendarBlock{},
	}, nil
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestCheckCollisionsParsesQuery(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc)

	professionalID := uuid.New()
	excludeID := uuid.New()

	url := fmt.Sprintf(
		"/api/v1/appointments/collision-check?professional_id=%s&datetime_str=2024-03-01T14:00:00Z&duration_minutes=45&exclude_appointment_id=%s",
		professionalID, excludeID,
	)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, professionalID, svc.lastProfessionalID)
	assert.True(t, svc.lastStart.Equal(time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)))
	assert.Equal(t, 45, svc.lastDuration)
	require.NotNil(t, svc.lastExcludeID)
	assert.Equal(t, excludeID, *svc.lastExcludeID)

	var body struct {
		Status string                     `json:"status"`
		Data   model.CollisionCheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.False(t, body.Data.HasCollisions)
	assert.NotNil(t, body.Data.ConflictingAppointments)
	assert.NotNil(t, body.Data.ConflictingBlocks)
}

func TestCheckCollisionsValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing professional", "datetime_str=2024-03-01T14:00:00Z&duration_minutes=30"},
		{"bad professional", "professional_id=nope&datetime_str=2024-03-01T14:00:00Z&duration_minutes=30"},
		{"bad datetime", "professional_id=" + uuid.NewString() + "&datetime_str=2024-03-01T14:00&duration_minutes=30"},
		{"bad duration", "professional_id=" + uuid.NewString() + "&datetime_str=2024-03-01T14:00:00Z&duration_minutes=soon"},
		{"bad exclude id", "professional_id=" + uuid.NewString() + "&datetime_str=2024-03-01T14:00:00Z&duration_minutes=30&exclude_appointment_id=nope"},
	}

	r := setupRouter(&fakeService{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/collision-check?"+tt.query, nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateAppointmentDefaultsType(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc)

	payload := fmt.Sprintf(`{
		"patient_id": %q,
		"professional_id": %q,
		"appointment_datetime": "2024-03-01T14:00:00Z",
		"duration_minutes": 30
	}`, uuid.NewString(), uuid.NewString())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, model.AppointmentTypeCheckup, svc.created.Type)
}

func TestCreateAppointmentRejectsOddDuration(t *testing.T) {
	r := setupRouter(&fakeService{})

	payload := fmt.Sprintf(`{
		"patient_id": %q,
		"professional_id": %q,
		"appointment_datetime": "2024-03-01T14:00:00Z",
		"duration_minutes": 17
	}`, uuid.NewString(), uuid.NewString())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetAppointmentInvalidID(t *testing.T) {
	r := setupRouter(&fakeService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
