package converter

import (
	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
)

// AppointmentToResponse flattens the joined doctor/hospital names.
func AppointmentToResponse(a *entity.Appointment) *dto.AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &dto.AppointmentResponse{
		ID:             a.ID,
		UserID:         a.UserID,
		DoctorID:       a.DoctorID,
		HospitalID:     a.HospitalID,
		Name:           a.Name,
		BloodGroup:     a.BloodGroup,
		MedicalHistory: a.MedicalHistory,
		Contact:        a.Contact,
		Status:         string(a.Status),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.Doctor != nil {
		resp.DoctorName = a.Doctor.Name
	}
	if a.Hospital != nil {
		resp.HospitalName = a.Hospital.Name
	}
	return resp
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
