package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every gateway call. A timed-out call is reported the
// same way as any other gateway failure.
const DefaultTimeout = 10 * time.Second

const (
	selectorCacheTTL     = 5 * time.Minute
	selectorCacheCleanup = 15 * time.Minute

	professionalsCacheKey = "professionals"
	patientsCacheKey      = "patients"
)

// genericErrorMessage is shown when the server gives no usable message.
const genericErrorMessage = "Error de conexión con el servidor"

// Error is the single normalized shape for every failed gateway call. Callers
// never probe response bodies themselves.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Appointment is the wire representation of a persisted appointment.
type Appointment struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient_id"`
	ProfessionalID  string    `json:"professional_id"`
	StartTime       time.Time `json:"appointment_datetime"`
	DurationMinutes int       `json:"duration_minutes"`
	Type            string    `json:"appointment_type"`
	Status          string    `json:"status"`
	Urgency         string    `json:"urgency"`
	Notes           string    `json:"notes,omitempty"`
	PatientName     string    `json:"patient_name,omitempty"`
}

// AppointmentRequest is the create/update payload. StartTime must be an
// absolute instant; the session controller converts wall-clock input before
// building one of these.
type AppointmentRequest struct {
	PatientID       string    `json:"patient_id"`
	ProfessionalID  string    `json:"professional_id"`
	StartTime       time.Time `json:"appointment_datetime"`
	DurationMinutes int       `json:"duration_minutes"`
	Type            string    `json:"appointment_type"`
	Urgency         string    `json:"urgency,omitempty"`
	Notes           string    `json:"notes"`
}

type CollisionQuery struct {
	ProfessionalID       string
	StartTime            time.Time
	DurationMinutes      int
	ExcludeAppointmentID string
}

// CalendarBlock is a busy interval imported from an external calendar.
type CalendarBlock struct {
	ID             string    `json:"id"`
	ProfessionalID string    `json:"professional_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Source         string    `json:"source"`
	Summary        string    `json:"summary,omitempty"`
}

type CollisionResult struct {
	HasCollisions           bool            `json:"has_collisions"`
	ConflictingAppointments []Appointment   `json:"conflicting_appointments"`
	ConflictingBlocks       []CalendarBlock `json:"conflicting_blocks"`
}

type Professional struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}

type Patient struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	selectors  *cache.Cache
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
		selectors:  cache.New(selectorCacheTTL, selectorCacheCleanup),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope matches the server's {status, data, message} response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
}

func (c *Client) CreateAppointment(ctx context.Context, req *AppointmentRequest) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, http.MethodPost, "/appointments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, id string, req *AppointmentRequest) (*Appointment, error) {
	var out Appointment
	if err := c.do(ctx, http.MethodPut, "/appointments/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/appointments/"+id, nil, nil)
}

func (c *Client) CheckCollisions(ctx context.Context, q CollisionQuery) (*CollisionResult, error) {
	params := url.Values{}
	params.Set("professional_id", q.ProfessionalID)
	params.Set("datetime_str", q.StartTime.UTC().Format(time.RFC3339))
	params.Set("duration_minutes", strconv.Itoa(q.DurationMinutes))
	if q.ExcludeAppointmentID != "" {
		params.Set("exclude_appointment_id", q.ExcludeAppointmentID)
	}

	var out CollisionResult
	if err := c.do(ctx, http.MethodGet, "/appointments/collision-check?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProfessionals returns the selector list for the form. The list is
// read-only within an editing session, so a short cache is safe.
func (c *Client) ListProfessionals(ctx context.Context) ([]Professional, error) {
	if cached, ok := c.selectors.Get(professionalsCacheKey); ok {
		return cached.([]Professional), nil
	}

	var out []Professional
	if err := c.do(ctx, http.MethodGet, "/professionals", nil, &out); err != nil {
		return nil, err
	}
	c.selectors.Set(professionalsCacheKey, out, cache.DefaultExpiration)
	return out, nil
}

func (c *Client) ListPatients(ctx context.Context) ([]Patient, error) {
	if cached, ok := c.selectors.Get(patientsCacheKey); ok {
		return cached.([]Patient), nil
	}

	var out []Patient
	if err := c.do(ctx, http.MethodGet, "/patients", nil, &out); err != nil {
		return nil, err
	}
	c.selectors.Set(patientsCacheKey, out, cache.DefaultExpiration)
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Status: 0, Message: genericErrorMessage}
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &Error{Status: 0, Message: genericErrorMessage}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("gateway request failed")
		return &Error{Status: 0, Message: genericErrorMessage}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: genericErrorMessage}
	}

	if resp.StatusCode >= 400 {
		return normalizeError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		raw = env.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: genericErrorMessage}
	}
	return nil
}

// normalizeError extracts a human-readable message from an error body. The
// server sends {status, message}; other backends use {detail}. Anything else
// falls back to the generic message.
func normalizeError(status int, raw []byte) *Error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Detail != "" {
			return &Error{Status: status, Message: env.Detail}
		}
		if env.Message != "" {
			return &Error{Status: status, Message: env.Message}
		}
	}
	return &Error{Status: status, Message: fmt.Sprintf("%s (HTTP %d)", genericErrorMessage, status)}
}
