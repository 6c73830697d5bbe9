package model

type Professional struct {
	Base
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	Specialty string `db:"specialty" json:"specialty,omitempty"`
	Status    string `db:"status" json:"status"`
}

type CreateProfessionalRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Specialty string `json:"specialty"`
}
