package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type HospitalRequest struct {
	Name            string   `json:"name" validate:"required,max=255"`
	LicenseID       string   `json:"license_id" validate:"omitempty,max=100"`
	Location        string   `json:"location" validate:"required,max=255"`
	ContactNumber   string   `json:"contact_number" validate:"required,max=50"`
	Email           string   `json:"email" validate:"required,email"`
	Beds            *int     `json:"beds" validate:"required,gte=0"`
	Departments     string   `json:"departments" validate:"required"`
	Rating          *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	EstablishedYear *int     `json:"established_year" validate:"omitempty,gte=1800,lte=2100"`
	Manager         string   `json:"manager" validate:"omitempty,max=255"`
	Address         string   `json:"address"`
	Website         string   `json:"website" validate:"omitempty,url"`
}

type DoctorRequest struct {
	Name           string           `json:"name" validate:"required,max=255"`
	LicenseNo      string           `json:"license_no" validate:"omitempty,max=100"`
	Specialization string           `json:"specialization" validate:"required,max=100"`
	Experience     int              `json:"experience" validate:"gte=0,lte=80"`
	Phone          string           `json:"phone" validate:"omitempty,max=50"`
	Email          string           `json:"email" validate:"omitempty,email"`
	Hospital       string           `json:"hospital" validate:"omitempty,max=255"`
	Qualifications string           `json:"qualifications"`
	Awards         string           `json:"awards"`
	LanguagesKnown string           `json:"languages_known"`
	Availability   string           `json:"availability"`
	Fee            *decimal.Decimal `json:"fee"`
	Gender         string           `json:"gender" validate:"omitempty,max=20"`
	Age            *int             `json:"age" validate:"omitempty,gte=18,lte=120"`
	Address        string           `json:"address"`
}

type DoctorApprovalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// DirectoryQuery is parsed from the query string of list endpoints.
type DirectoryQuery struct {
	Name           string
	Specialization string
}

// Response DTOs

// ContactLinks are deep links a client hands to the OS dialer or mail app.
type ContactLinks struct {
	Call  string `json:"call,omitempty"`
	Email string `json:"email,omitempty"`
}

type HospitalResponse struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	LicenseID       string       `json:"license_id,omitempty"`
	Location        string       `json:"location"`
	ContactNumber   string       `json:"contact_number"`
	Email           string       `json:"email"`
	Beds            int          `json:"beds"`
	Departments     string       `json:"departments"`
	Rating          *float64     `json:"rating,omitempty"`
	EstablishedYear *int         `json:"established_year,omitempty"`
	Manager         string       `json:"manager,omitempty"`
	Address         string       `json:"address,omitempty"`
	Website         string       `json:"website,omitempty"`
	Links           ContactLinks `json:"links"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type DoctorResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	LicenseNo      string           `json:"license_no,omitempty"`
	Specialization string           `json:"specialization"`
	Experience     int              `json:"experience"`
	Phone          string           `json:"phone,omitempty"`
	Email          string           `json:"email,omitempty"`
	Hospital       string           `json:"hospital,omitempty"`
	Qualifications string           `json:"qualifications,omitempty"`
	Awards         string           `json:"awards,omitempty"`
	LanguagesKnown string           `json:"languages_known,omitempty"`
	Availability   string           `json:"availability,omitempty"`
	Fee            *decimal.Decimal `json:"fee,omitempty"`
	Gender         string           `json:"gender,omitempty"`
	Age            *int             `json:"age,omitempty"`
	Address        string           `json:"address,omitempty"`
	IsApproved     bool             `json:"is_approved"`
	Links          ContactLinks     `json:"links"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type HospitalListResponse struct {
	Hospitals []HospitalResponse `json:"hospitals"`
	Total     int                `json:"total"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

type SearchResponse struct {
	Query     string             `json:"query"`
	Hospitals []HospitalResponse `json:"hospitals"`
	Doctors   []DoctorResponse   `json:"doctors"`
}
