package repository

import (
	"context"

	"medilink/internal/domain/entity"

	"github.com/google/uuid"
)

type DoctorRepository interface {
	Create(ctx context.Context, doctor *entity.Doctor) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error)
	FindAll(ctx context.Context, filter *entity.DirectoryFilter) ([]entity.Doctor, error)
	Update(ctx context.Context, doctor *entity.Doctor) error
	SetApproval(ctx context.Context, id uuid.UUID, approved bool) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}
