package repository

import (
	"context"
	"errors"

	"medilink/internal/domain/entity"
	domainRepo "medilink/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

// withTargets joins the doctor and hospital names shown in appointment lists.
func withTargets(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Doctor", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "specialization") }).
		Preload("Hospital", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "location") })
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return conn(ctx, r.db).Omit("Doctor", "Hospital").Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := withTargets(conn(ctx, r.db)).Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByRequestID(ctx context.Context, userID uuid.UUID, requestID string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := withTargets(conn(ctx, r.db)).
		Where("user_id = ? AND request_id = ?", userID, requestID).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByUserID(ctx context.Context, userID uuid.UUID, includeCancelled bool) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := withTargets(conn(ctx, r.db)).Where("user_id = ?", userID)
	if !includeCancelled {
		query = query.Where("status <> ?", entity.AppointmentStatusCancelled)
	}
	err := query.Order("created_at DESC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := withTargets(conn(ctx, r.db))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		query = query.Where("name ILIKE ?", containsPattern(filter.Query))
	}
	err := query.Order("created_at DESC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// TransitionStatus performs the guarded UPDATE in one statement so two writers cannot
// both move the same row. 0 affected rows means the guard did not match.
func (r *appointmentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []entity.AppointmentStatus, to entity.AppointmentStatus, ownerID *uuid.UUID) (int64, error) {
	query := conn(ctx, r.db).Model(&entity.Appointment{}).
		Where("id = ? AND status IN ?", id, from)
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}
	result := query.Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, status entity.AppointmentStatus) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Appointment{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
