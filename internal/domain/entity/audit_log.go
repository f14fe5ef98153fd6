package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a system audit trail entry. Metadata carries the entity name,
// its id and the old/new values.
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Common audit actions
const (
	AuditActionUserSignup          = "user.signup"
	AuditActionUserConfirm         = "user.confirm"
	AuditActionUserLogin           = "user.login"
	AuditActionUserLogout          = "user.logout"
	AuditActionAppointmentCreate   = "appointment.create"
	AuditActionAppointmentApprove  = "appointment.approve"
	AuditActionAppointmentReject   = "appointment.reject"
	AuditActionAppointmentCancel   = "appointment.cancel"
	AuditActionAppointmentComplete = "appointment.complete"
	AuditActionRegistrationCreate  = "registration.create"
	AuditActionRegistrationUpdate  = "registration.update"
	AuditActionHospitalCreate      = "hospital.create"
	AuditActionHospitalUpdate      = "hospital.update"
	AuditActionHospitalDelete      = "hospital.delete"
	AuditActionDoctorCreate        = "doctor.create"
	AuditActionDoctorUpdate        = "doctor.update"
	AuditActionDoctorDelete        = "doctor.delete"
	AuditActionBloodRequestCreate  = "blood_request.create"
)

// AuditActionForStatus maps a lifecycle target to its audit action.
func AuditActionForStatus(status AppointmentStatus) string {
	switch status {
	case AppointmentStatusApproved:
		return AuditActionAppointmentApprove
	case AppointmentStatusRejected:
		return AuditActionAppointmentReject
	case AppointmentStatusCancelled:
		return AuditActionAppointmentCancel
	case AppointmentStatusCompleted:
		return AuditActionAppointmentComplete
	default:
		return "appointment." + string(status)
	}
}
