package converter

import (
	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
)

func DonorProfileToResponse(p *entity.DonorProfile) *dto.DonorRegistrationResponse {
	if p == nil {
		return nil
	}
	return &dto.DonorRegistrationResponse{
		ID:             p.ID,
		UserID:         p.UserID,
		Name:           p.Name,
		CNIC:           p.CNIC,
		BloodGroup:     p.BloodGroup,
		Age:            p.Age,
		MedicalHistory: p.MedicalHistory,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func DonorProfilesToResponses(profiles []entity.DonorProfile) []dto.DonorRegistrationResponse {
	responses := make([]dto.DonorRegistrationResponse, len(profiles))
	for i := range profiles {
		responses[i] = *DonorProfileToResponse(&profiles[i])
	}
	return responses
}
