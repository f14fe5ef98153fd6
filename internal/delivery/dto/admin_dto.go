package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateBloodRequestRequest struct {
	BloodGroup string `json:"blood_group" validate:"required,bloodgroup"`
}

type BloodRequestResponse struct {
	ID          int64     `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	BloodGroup  string    `json:"blood_group"`
	RequestedAt time.Time `json:"requested_at"`
}

type BloodRequestListResponse struct {
	Requests []BloodRequestResponse `json:"requests"`
	Total    int                    `json:"total"`
}

type DashboardResponse struct {
	Hospitals           int64 `json:"hospitals"`
	Doctors             int64 `json:"doctors"`
	Donors              int64 `json:"donors"`
	PendingAppointments int64 `json:"pending_appointments"`
}
