package repository

import (
	"context"
	"errors"

	"medilink/internal/domain/entity"
	domainRepo "medilink/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type donorProfileRepository struct {
	db *gorm.DB
}

func NewDonorProfileRepository(db *gorm.DB) domainRepo.DonorProfileRepository {
	return &donorProfileRepository{db: db}
}

func (r *donorProfileRepository) Create(ctx context.Context, profile *entity.DonorProfile) error {
	return conn(ctx, r.db).Create(profile).Error
}

func (r *donorProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DonorProfile, error) {
	var profile entity.DonorProfile
	err := conn(ctx, r.db).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *donorProfileRepository) Update(ctx context.Context, profile *entity.DonorProfile) error {
	return conn(ctx, r.db).Model(profile).
		Select("name", "cnic", "blood_group", "age", "medical_history", "updated_at").
		Updates(profile).Error
}

func (r *donorProfileRepository) FindAll(ctx context.Context, query string) ([]entity.DonorProfile, error) {
	var profiles []entity.DonorProfile
	q := conn(ctx, r.db)
	if query != "" {
		q = q.Where("name ILIKE ? OR blood_group = ?", containsPattern(query), query)
	}
	err := q.Order("created_at DESC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *donorProfileRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.DonorProfile{}).Count(&count).Error
	return count, err
}
