package repository

import (
	"context"
	"time"

	"medilink/internal/domain/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) error
	ResetUnconfirmedPassword(ctx context.Context, id uuid.UUID, passwordHash string) (int64, error)
	UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error
}
