package repository

import (
	"context"
	"errors"

	"medilink/internal/domain/entity"
	domainRepo "medilink/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) domainRepo.DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *entity.Doctor) error {
	return conn(ctx, r.db).Create(doctor).Error
}

func (r *doctorRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := conn(ctx, r.db).Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

// FindAll supports optional filters: name, specialization and approval.
func (r *doctorRepository) FindAll(ctx context.Context, filter *entity.DirectoryFilter) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	query := conn(ctx, r.db)
	if filter != nil {
		if filter.Name != "" {
			query = query.Where("name ILIKE ?", containsPattern(filter.Name))
		}
		if filter.Specialization != "" {
			query = query.Where("specialization ILIKE ?", containsPattern(filter.Specialization))
		}
		if filter.ApprovedOnly {
			query = query.Where("is_approved = ?", true)
		}
	}
	err := query.Order("name ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *entity.Doctor) error {
	return conn(ctx, r.db).Save(doctor).Error
}

func (r *doctorRepository) SetApproval(ctx context.Context, id uuid.UUID, approved bool) (int64, error) {
	result := conn(ctx, r.db).Model(&entity.Doctor{}).Where("id = ?", id).Update("is_approved", approved)
	return result.RowsAffected, result.Error
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&entity.Doctor{})
	return result.RowsAffected, result.Error
}

func (r *doctorRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Doctor{}).Count(&count).Error
	return count, err
}
