package converter

import (
	"net/url"
	"strings"

	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
)

// TelLink builds a tel: URI, keeping only digits and a leading +.
func TelLink(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "tel:" + b.String()
}

func MailtoLink(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return (&url.URL{Scheme: "mailto", Opaque: email}).String()
}

func HospitalRequestToEntity(req *dto.HospitalRequest, h *entity.Hospital) {
	h.Name = req.Name
	h.LicenseID = req.LicenseID
	h.Location = req.Location
	h.ContactNumber = req.ContactNumber
	h.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Beds != nil {
		h.Beds = *req.Beds
	}
	h.Departments = req.Departments
	h.Rating = req.Rating
	h.EstablishedYear = req.EstablishedYear
	h.Manager = req.Manager
	h.Address = req.Address
	h.Website = req.Website
}

func HospitalToResponse(h *entity.Hospital) *dto.HospitalResponse {
	if h == nil {
		return nil
	}
	return &dto.HospitalResponse{
		ID:              h.ID,
		Name:            h.Name,
		LicenseID:       h.LicenseID,
		Location:        h.Location,
		ContactNumber:   h.ContactNumber,
		Email:           h.Email,
		Beds:            h.Beds,
		Departments:     h.Departments,
		Rating:          h.Rating,
		EstablishedYear: h.EstablishedYear,
		Manager:         h.Manager,
		Address:         h.Address,
		Website:         h.Website,
		Links: dto.ContactLinks{
			Call:  TelLink(h.ContactNumber),
			Email: MailtoLink(h.Email),
		},
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func HospitalsToResponses(hospitals []entity.Hospital) []dto.HospitalResponse {
	responses := make([]dto.HospitalResponse, len(hospitals))
	for i := range hospitals {
		responses[i] = *HospitalToResponse(&hospitals[i])
	}
	return responses
}

func DoctorRequestToEntity(req *dto.DoctorRequest, d *entity.Doctor) {
	d.Name = req.Name
	d.LicenseNo = req.LicenseNo
	d.Specialization = req.Specialization
	d.Experience = req.Experience
	d.Phone = req.Phone
	d.Email = strings.ToLower(strings.TrimSpace(req.Email))
	d.Hospital = req.Hospital
	d.Qualifications = req.Qualifications
	d.Awards = req.Awards
	d.LanguagesKnown = req.LanguagesKnown
	d.Availability = req.Availability
	d.Fee = req.Fee
	d.Gender = req.Gender
	d.Age = req.Age
	d.Address = req.Address
}

func DoctorToResponse(d *entity.Doctor) *dto.DoctorResponse {
	if d == nil {
		return nil
	}
	return &dto.DoctorResponse{
		ID:             d.ID,
		Name:           d.Name,
		LicenseNo:      d.LicenseNo,
		Specialization: d.Specialization,
		Experience:     d.Experience,
		Phone:          d.Phone,
		Email:          d.Email,
		Hospital:       d.Hospital,
		Qualifications: d.Qualifications,
		Awards:         d.Awards,
		LanguagesKnown: d.LanguagesKnown,
		Availability:   d.Availability,
		Fee:            d.Fee,
		Gender:         d.Gender,
		Age:            d.Age,
		Address:        d.Address,
		IsApproved:     d.IsApproved,
		Links: dto.ContactLinks{
			Call:  TelLink(d.Phone),
			Email: MailtoLink(d.Email),
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}
