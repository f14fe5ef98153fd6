package entity

import (
	"time"

	"github.com/google/uuid"
)

// Hospital is a directory record managed from the admin panel
type Hospital struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name            string    `gorm:"type:varchar(255);not null;index" json:"name"`
	LicenseID       string    `gorm:"type:varchar(100)" json:"license_id"`
	Location        string    `gorm:"type:varchar(255);not null" json:"location"`
	ContactNumber   string    `gorm:"type:varchar(50);not null" json:"contact_number"`
	Email           string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Beds            int       `gorm:"not null" json:"beds"`
	Departments     string    `gorm:"type:text;not null" json:"departments"`
	Rating          *float64  `json:"rating,omitempty"`
	EstablishedYear *int      `json:"established_year,omitempty"`
	Manager         string    `gorm:"type:varchar(255)" json:"manager,omitempty"`
	Address         string    `gorm:"type:text" json:"address,omitempty"`
	Website         string    `gorm:"type:varchar(255)" json:"website,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Hospital) TableName() string {
	return "hospitals"
}
