package entity

import (
	"time"

	"github.com/google/uuid"
)

// BloodRequest is an admin broadcast asking for a blood group
type BloodRequest struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	BloodGroup  string    `gorm:"type:varchar(3);not null" json:"blood_group"`
	RequestedAt time.Time `gorm:"not null;index" json:"requested_at"`
}

func (BloodRequest) TableName() string {
	return "blood_requests"
}
