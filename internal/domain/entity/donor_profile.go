package entity

import (
	"time"

	"github.com/google/uuid"
)

// DonorProfile is the donor registration filled in after sign-up. One per user.
type DonorProfile struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	CNIC           string    `gorm:"column:cnic;type:varchar(15);not null" json:"cnic"`
	BloodGroup     string    `gorm:"type:varchar(3);not null;index" json:"blood_group"`
	Age            int       `gorm:"not null" json:"age"`
	MedicalHistory *string   `gorm:"type:text" json:"medical_history,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DonorProfile) TableName() string {
	return "registrations"
}
