package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type DonorRegistrationRequest struct {
	Name           string  `json:"name" validate:"required,max=255"`
	CNIC           string  `json:"cnic" validate:"required,cnic"`
	BloodGroup     string  `json:"blood_group" validate:"required,bloodgroup"`
	Age            int     `json:"age" validate:"required,gte=18,lte=100"`
	MedicalHistory *string `json:"medical_history" validate:"omitempty,max=2000"`
}

// Response DTOs

type DonorRegistrationResponse struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	CNIC           string    `json:"cnic"`
	BloodGroup     string    `json:"blood_group"`
	Age            int       `json:"age"`
	MedicalHistory *string   `json:"medical_history,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type DonorListResponse struct {
	Donors []DonorRegistrationResponse `json:"donors"`
	Total  int                         `json:"total"`
}
