package repository

import (
	"context"

	"medilink/internal/domain/entity"
	domainRepo "medilink/internal/domain/repository"

	"gorm.io/gorm"
)

type bloodRequestRepository struct {
	db *gorm.DB
}

func NewBloodRequestRepository(db *gorm.DB) domainRepo.BloodRequestRepository {
	return &bloodRequestRepository{db: db}
}

func (r *bloodRequestRepository) Create(ctx context.Context, request *entity.BloodRequest) error {
	return conn(ctx, r.db).Create(request).Error
}

func (r *bloodRequestRepository) FindAll(ctx context.Context) ([]entity.BloodRequest, error) {
	var requests []entity.BloodRequest
	err := conn(ctx, r.db).Order("requested_at DESC").Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
