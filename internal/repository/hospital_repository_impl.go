package repository

import (
	"context"
	"errors"
	"strings"

	"medilink/internal/domain/entity"
	domainRepo "medilink/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type hospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepository(db *gorm.DB) domainRepo.HospitalRepository {
	return &hospitalRepository{db: db}
}

func (r *hospitalRepository) Create(ctx context.Context, hospital *entity.Hospital) error {
	hospital.Email = strings.ToLower(hospital.Email)
	return conn(ctx, r.db).Create(hospital).Error
}

func (r *hospitalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hospital, error) {
	var hospital entity.Hospital
	err := conn(ctx, r.db).Where("id = ?", id).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hospital, nil
}

func (r *hospitalRepository) FindByEmail(ctx context.Context, email string) (*entity.Hospital, error) {
	var hospital entity.Hospital
	err := conn(ctx, r.db).Where("email = ?", strings.ToLower(email)).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hospital, nil
}

func (r *hospitalRepository) FindAll(ctx context.Context, filter *entity.DirectoryFilter) ([]entity.Hospital, error) {
	var hospitals []entity.Hospital
	query := conn(ctx, r.db)
	if filter != nil && filter.Name != "" {
		query = query.Where("name ILIKE ?", containsPattern(filter.Name))
	}
	err := query.Order("name ASC").Find(&hospitals).Error
	if err != nil {
		return nil, err
	}
	return hospitals, nil
}

func (r *hospitalRepository) Update(ctx context.Context, hospital *entity.Hospital) error {
	hospital.Email = strings.ToLower(hospital.Email)
	return conn(ctx, r.db).Save(hospital).Error
}

func (r *hospitalRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&entity.Hospital{})
	return result.RowsAffected, result.Error
}

func (r *hospitalRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Hospital{}).Count(&count).Error
	return count, err
}
