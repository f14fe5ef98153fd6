package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"medilink/internal/domain/entity"
	domainRepo "medilink/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	user.Email = strings.ToLower(user.Email)
	return conn(ctx, r.db).Create(user).Error
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, r.db).Preload("Role").Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, r.db).Preload("Role").Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ConfirmEmail stamps email_confirmed_at once; later calls keep the first timestamp.
func (r *userRepository) ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) error {
	return conn(ctx, r.db).Model(&entity.User{}).
		Where("id = ? AND email_confirmed_at IS NULL", id).
		Update("email_confirmed_at", at).Error
}

// ResetUnconfirmedPassword replaces the password of an account that has not confirmed its
// email yet. It reports 0 rows once the address is confirmed.
func (r *userRepository) ResetUnconfirmedPassword(ctx context.Context, id uuid.UUID, passwordHash string) (int64, error) {
	result := conn(ctx, r.db).Model(&entity.User{}).
		Where("id = ? AND email_confirmed_at IS NULL", id).
		Updates(map[string]interface{}{"password": passwordHash, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}

func (r *userRepository) UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error {
	return conn(ctx, r.db).Model(&entity.User{}).
		Where("id = ?", id).
		Update("device_token", token).Error
}
