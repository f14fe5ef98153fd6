package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateAppointmentRequest targets exactly one of a doctor or a hospital.
// RequestID is an optional client key; resubmitting it returns the first appointment.
type CreateAppointmentRequest struct {
	RequestID      string     `json:"request_id" validate:"omitempty,max=64"`
	DoctorID       *uuid.UUID `json:"doctor_id" validate:"required_without=HospitalID,excluded_with=HospitalID"`
	HospitalID     *uuid.UUID `json:"hospital_id" validate:"required_without=DoctorID"`
	Name           string     `json:"name" validate:"required,max=255"`
	BloodGroup     string     `json:"blood_group" validate:"required,bloodgroup"`
	MedicalHistory *string    `json:"medical_history" validate:"omitempty,max=2000"`
	Contact        string     `json:"contact" validate:"required,max=50"`
}

// Response DTOs

type AppointmentResponse struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	DoctorID       *uuid.UUID `json:"doctor_id,omitempty"`
	DoctorName     string     `json:"doctor_name,omitempty"`
	HospitalID     *uuid.UUID `json:"hospital_id,omitempty"`
	HospitalName   string     `json:"hospital_name,omitempty"`
	Name           string     `json:"name"`
	BloodGroup     string     `json:"blood_group"`
	MedicalHistory *string    `json:"medical_history,omitempty"`
	Contact        string     `json:"contact"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
