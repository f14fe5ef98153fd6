package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Doctor is a directory record managed from the admin panel
type Doctor struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string           `gorm:"type:varchar(255);not null;index" json:"name"`
	LicenseNo      string           `gorm:"type:varchar(100)" json:"license_no"`
	Specialization string           `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Experience     int              `gorm:"not null;default:0" json:"experience"`
	Phone          string           `gorm:"type:varchar(50)" json:"phone"`
	Email          string           `gorm:"type:varchar(255)" json:"email"`
	Hospital       string           `gorm:"type:varchar(255)" json:"hospital"`
	Qualifications string           `gorm:"type:text" json:"qualifications,omitempty"`
	Awards         string           `gorm:"type:text" json:"awards,omitempty"`
	LanguagesKnown string           `gorm:"type:text" json:"languages_known,omitempty"`
	Availability   string           `gorm:"type:text" json:"availability,omitempty"`
	Fee            *decimal.Decimal `gorm:"type:decimal(10,2)" json:"fee,omitempty"`
	Gender         string           `gorm:"type:varchar(20)" json:"gender,omitempty"`
	Age            *int             `json:"age,omitempty"`
	Address        string           `gorm:"type:text" json:"address,omitempty"`
	IsApproved     bool             `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}
