package converter

import (
	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
)

func BloodRequestsToResponses(requests []entity.BloodRequest) []dto.BloodRequestResponse {
	responses := make([]dto.BloodRequestResponse, len(requests))
	for i, r := range requests {
		responses[i] = dto.BloodRequestResponse{
			ID:          r.ID,
			UserID:      r.UserID,
			BloodGroup:  r.BloodGroup,
			RequestedAt: r.RequestedAt,
		}
	}
	return responses
}
