// Package calendarview maps event records to the visual classification the
// calendar grid renders. It is pure: no network, no mutation, no state.
package calendarview

import (
	"strings"

	"github.com/turnolab/scheduler-api/internal/model"
)

type EventKind string

const (
	KindAppointment   EventKind = "appointment"
	KindExternalBlock EventKind = "external_block"
)

// Event is the read-only view a cell is rendered from.
type Event struct {
	Kind             EventKind
	Status           model.AppointmentStatus
	Urgency          model.UrgencyLevel
	Type             model.AppointmentType
	Title            string
	ProfessionalName string
	TimeText         string
}

// Style describes one cell's appearance.
type Style struct {
	Background string
	Border     string
	Emphasis   string
	Icon       string
}

// statusStyles is the single style table for appointment cells. Unrecognized
// keys fall back to the scheduled entry.
var statusStyles = map[model.AppointmentStatus]Style{
	model.AppointmentStatusScheduled: {
		Background: "#e8f1fb",
		Border:     "#4a90d9",
		Emphasis:   "normal",
		Icon:       "clock",
	},
	model.AppointmentStatusConfirmed: {
		Background: "#e6f7ec",
		Border:     "#2fa05c",
		Emphasis:   "normal",
		Icon:       "check",
	},
	model.AppointmentStatusCompleted: {
		Background: "#f0f0f0",
		Border:     "#9b9b9b",
		Emphasis:   "muted",
		Icon:       "check-double",
	},
	model.AppointmentStatusCancelled: {
		Background: "#fdeaea",
		Border:     "#d95454",
		Emphasis:   "strike",
		Icon:       "cross",
	},
}

// emergencyStyle overrides the status style whenever the urgency calls for it.
var emergencyStyle = Style{
	Background: "#fbe8e8",
	Border:     "#c0190c",
	Emphasis:   "bold",
	Icon:       "alert",
}

// blockStyle is fixed for externally-sourced busy intervals, regardless of
// any other field.
var blockStyle = Style{
	Background: "repeating-linear-gradient(45deg, #ececec, #ececec 6px, #f7f7f7 6px, #f7f7f7 12px)",
	Border:     "#bdbdbd",
	Emphasis:   "muted",
	Icon:       "calendar-lock",
}

// Classify resolves the style for an event. Precedence: external block, then
// urgency, then status with a scheduled fallback.
func Classify(e Event) Style {
	if e.Kind == KindExternalBlock {
		return blockStyle
	}

	if e.Urgency == model.UrgencyHigh || e.Urgency == model.UrgencyEmergency {
		return emergencyStyle
	}

	status := e.Status
	if status == "" {
		status = model.AppointmentStatusScheduled
	}
	if style, ok := statusStyles[status]; ok {
		return style
	}
	return statusStyles[model.AppointmentStatusScheduled]
}

// DisplayName extracts the patient name from a composed event title. Titles
// arrive as "Name - detail"; only the first segment is shown. This is a
// display transformation, not validation.
func DisplayName(title string) string {
	name, _, _ := strings.Cut(title, " - ")
	return name
}
