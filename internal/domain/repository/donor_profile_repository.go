package repository

import (
	"context"

	"medilink/internal/domain/entity"

	"github.com/google/uuid"
)

type DonorProfileRepository interface {
	Create(ctx context.Context, profile *entity.DonorProfile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DonorProfile, error)
	Update(ctx context.Context, profile *entity.DonorProfile) error
	FindAll(ctx context.Context, query string) ([]entity.DonorProfile, error)
	Count(ctx context.Context) (int64, error)
}
