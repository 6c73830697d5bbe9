package model

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

type Patient struct {
	Base
	Name   string        `db:"name" json:"name"`
	Email  string        `db:"email" json:"email"`
	Phone  string        `db:"phone" json:"phone,omitempty"`
	Status PatientStatus `db:"status" json:"status"`
}

type CreatePatientRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Phone  string `json:"phone"`
	Status string `json:"status"`
}
