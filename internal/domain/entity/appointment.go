package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusApproved  AppointmentStatus = "approved"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// appointmentTransitions maps a target status to the statuses it may be entered from.
// Nothing leads back to pending.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusApproved:  {AppointmentStatusPending},
	AppointmentStatusRejected:  {AppointmentStatusPending},
	AppointmentStatusCancelled: {AppointmentStatusPending, AppointmentStatusApproved},
	AppointmentStatusCompleted: {AppointmentStatusApproved},
}

// IsValid checks the status against the known enumeration.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusApproved, AppointmentStatusRejected,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// TransitionSources returns the statuses from which target can be reached.
func TransitionSources(target AppointmentStatus) []AppointmentStatus {
	sources := appointmentTransitions[target]
	out := make([]AppointmentStatus, len(sources))
	copy(out, sources)
	return out
}

// Appointment is a donor's request to see a doctor or visit a hospital
type Appointment struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	DoctorID       *uuid.UUID        `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	HospitalID     *uuid.UUID        `gorm:"type:uuid;index" json:"hospital_id,omitempty"`
	RequestID      *string           `gorm:"type:varchar(64)" json:"request_id,omitempty"`
	Name           string            `gorm:"type:varchar(255);not null" json:"name"`
	BloodGroup     string            `gorm:"type:varchar(3);not null" json:"blood_group"`
	MedicalHistory *string           `gorm:"type:text" json:"medical_history,omitempty"`
	Contact        string            `gorm:"type:varchar(50);not null" json:"contact"`
	Status         AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt      time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor   *Doctor   `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsPending checks if appointment is awaiting a decision
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// CanTransitionTo reports whether the lifecycle allows moving to target.
func (a *Appointment) CanTransitionTo(target AppointmentStatus) bool {
	for _, from := range appointmentTransitions[target] {
		if a.Status == from {
			return true
		}
	}
	return false
}

// TargetName returns the joined doctor or hospital name, whichever is set.
func (a *Appointment) TargetName() string {
	if a.Doctor != nil {
		return a.Doctor.Name
	}
	if a.Hospital != nil {
		return a.Hospital.Name
	}
	return ""
}

// AppointmentFilter narrows admin listings.
type AppointmentFilter struct {
	Status AppointmentStatus
	Query  string // patient name (ILIKE)
}
