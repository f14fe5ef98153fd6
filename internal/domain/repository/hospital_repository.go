package repository

import (
	"context"

	"medilink/internal/domain/entity"

	"github.com/google/uuid"
)

type HospitalRepository interface {
	Create(ctx context.Context, hospital *entity.Hospital) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Hospital, error)
	FindByEmail(ctx context.Context, email string) (*entity.Hospital, error)
	FindAll(ctx context.Context, filter *entity.DirectoryFilter) ([]entity.Hospital, error)
	Update(ctx context.Context, hospital *entity.Hospital) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}
