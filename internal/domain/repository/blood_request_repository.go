package repository

import (
	"context"

	"medilink/internal/domain/entity"
)

type BloodRequestRepository interface {
	Create(ctx context.Context, request *entity.BloodRequest) error
	FindAll(ctx context.Context) ([]entity.BloodRequest, error)
}
