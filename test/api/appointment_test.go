package api_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestAppointmentLifecycle(t *testing.T) {
	profResp := makeRequest("POST", "/professionals", map[string]interface{}{
		"name":      "Dra. Gomez",
		"email":     uniqueEmail("prof"),
		"specialty": "ortodoncia",
	})
	if !profResp.IsSuccess() {
		t.Fatalf("failed to create professional: %s", profResp.Message)
	}
	professionalID := profResp.GetString("id")

	patientResp := makeRequest("POST", "/patients", map[string]interface{}{
		"name":  "Juan Perez",
		"email": uniqueEmail("patient"),
		"phone": "+54 11 5555-0001",
	})
	if !patientResp.IsSuccess() {
		t.Fatalf("failed to create patient: %s", patientResp.Message)
	}
	patientID := patientResp.GetString("id")

	start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Hour)

	createResp := makeRequest("POST", "/appointments", map[string]interface{}{
		"patient_id":           patientID,
		"professional_id":      professionalID,
		"appointment_datetime": start.Format(time.RFC3339),
		"duration_minutes":     30,
		"appointment_type":     "checkup",
	})
	if !createResp.IsSuccess() {
		t.Fatalf("failed to create appointment: %s", createResp.Message)
	}
	appointmentID := createResp.GetString("id")
	defer makeRequest("DELETE", "/appointments/"+appointmentID, nil)

	t.Run("collision check reports overlap", func(t *testing.T) {
		path := fmt.Sprintf("/appointments/collision-check?professional_id=%s&datetime_str=%s&duration_minutes=30",
			professionalID, start.Add(15*time.Minute).Format(time.RFC3339))
		resp := makeRequest("GET", path, nil)
		if !resp.IsSuccess() {
			t.Fatalf("collision check failed: %s", resp.Message)
		}
		if has, _ := resp.Data["has_collisions"].(bool); !has {
			t.Error("expected overlap with existing appointment")
		}
	})

	t.Run("collision check excludes the appointment itself", func(t *testing.T) {
		path := fmt.Sprintf("/appointments/collision-check?professional_id=%s&datetime_str=%s&duration_minutes=30&exclude_appointment_id=%s",
			professionalID, start.Format(time.RFC3339), appointmentID)
		resp := makeRequest("GET", path, nil)
		if !resp.IsSuccess() {
			t.Fatalf("collision check failed: %s", resp.Message)
		}
		if has, _ := resp.Data["has_collisions"].(bool); has {
			t.Error("appointment should not collide with itself when excluded")
		}
	})

	t.Run("update reschedules", func(t *testing.T) {
		newStart := start.Add(2 * time.Hour)
		resp := makeRequest("PUT", "/appointments/"+appointmentID, map[string]interface{}{
			"appointment_datetime": newStart.Format(time.RFC3339),
		})
		if !resp.IsSuccess() {
			t.Fatalf("failed to update appointment: %s", resp.Message)
		}
		if got := resp.GetString("appointment_datetime"); got != "" {
			parsed, err := time.Parse(time.RFC3339, got)
			if err != nil {
				t.Fatalf("unparseable appointment_datetime %q: %v", got, err)
			}
			if !parsed.Equal(newStart) {
				t.Errorf("appointment_datetime = %s, want %s", parsed, newStart)
			}
		}
	})

	t.Run("invalid duration rejected", func(t *testing.T) {
		resp := makeRequest("POST", "/appointments", map[string]interface{}{
			"patient_id":           patientID,
			"professional_id":      professionalID,
			"appointment_datetime": start.Add(24 * time.Hour).Format(time.RFC3339),
			"duration_minutes":     17,
		})
		if resp.IsSuccess() {
			t.Error("expected duration 17 to be rejected")
		}
	})
}

func TestCalendarBlockImport(t *testing.T) {
	profResp := makeRequest("POST", "/professionals", map[string]interface{}{
		"name":      "Dr. Block",
		"email":     uniqueEmail("prof"),
		"specialty": "cirugia",
	})
	if !profResp.IsSuccess() {
		t.Fatalf("failed to create professional: %s", profResp.Message)
	}
	professionalID := profResp.GetString("id")

	start := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Hour)

	resp := makeRequest("POST", "/calendar-blocks", map[string]interface{}{
		"professional_id": professionalID,
		"start_time":      start.Format(time.RFC3339),
		"end_time":        start.Add(time.Hour).Format(time.RFC3339),
		"source":          "gcal",
		"summary":         "Congreso",
	})
	if !resp.IsSuccess() {
		t.Fatalf("failed to import block: %s", resp.Message)
	}

	checkPath := fmt.Sprintf("/appointments/collision-check?professional_id=%s&datetime_str=%s&duration_minutes=30",
		professionalID, start.Format(time.RFC3339))
	checkResp := makeRequest("GET", checkPath, nil)
	if !checkResp.IsSuccess() {
		t.Fatalf("collision check failed: %s", checkResp.Message)
	}
	if has, _ := checkResp.Data["has_collisions"].(bool); !has {
		t.Error("expected collision with imported calendar block")
	}
	if checkResp.StatusCode != http.StatusOK {
		t.Errorf("unexpected status %d", checkResp.StatusCode)
	}
}
