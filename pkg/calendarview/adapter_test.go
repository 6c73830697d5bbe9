package calendarview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turnolab/scheduler-api/internal/model"
)

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  Style
	}{
		{
			name:  "external block always striped",
			event: Event{Kind: KindExternalBlock},
			want:  blockStyle,
		},
		{
			name: "block wins over urgency and status",
			event: Event{
				Kind:    KindExternalBlock,
				Status:  model.AppointmentStatusConfirmed,
				Urgency: model.UrgencyEmergency,
			},
			want: blockStyle,
		},
		{
			name: "high urgency overrides status",
			event: Event{
				Kind:    KindAppointment,
				Status:  model.AppointmentStatusConfirmed,
				Urgency: model.UrgencyHigh,
			},
			want: emergencyStyle,
		},
		{
			name: "emergency urgency overrides status",
			event: Event{
				Kind:    KindAppointment,
				Status:  model.AppointmentStatusCancelled,
				Urgency: model.UrgencyEmergency,
			},
			want: emergencyStyle,
		},
		{
			name: "normal urgency uses status",
			event: Event{
				Kind:    KindAppointment,
				Status:  model.AppointmentStatusConfirmed,
				Urgency: model.UrgencyNormal,
			},
			want: statusStyles[model.AppointmentStatusConfirmed],
		},
		{
			name:  "cancelled",
			event: Event{Kind: KindAppointment, Status: model.AppointmentStatusCancelled},
			want:  statusStyles[model.AppointmentStatusCancelled],
		},
		{
			name:  "completed",
			event: Event{Kind: KindAppointment, Status: model.AppointmentStatusCompleted},
			want:  statusStyles[model.AppointmentStatusCompleted],
		},
		{
			name:  "empty status falls back to scheduled",
			event: Event{Kind: KindAppointment},
			want:  statusStyles[model.AppointmentStatusScheduled],
		},
		{
			name:  "unknown status falls back to scheduled",
			event: Event{Kind: KindAppointment, Status: model.AppointmentStatus("archived")},
			want:  statusStyles[model.AppointmentStatusScheduled],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.event))
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Juan Perez - limpieza", "Juan Perez"},
		{"Juan Perez - limpieza - urgente", "Juan Perez"},
		{"Juan Perez", "Juan Perez"},
		{"", ""},
		{" - sin nombre", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayName(tt.title), "title %q", tt.title)
	}
}
