package repository

import (
	"context"

	"medilink/internal/domain/entity"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindByRequestID(ctx context.Context, userID uuid.UUID, requestID string) (*entity.Appointment, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, includeCancelled bool) ([]entity.Appointment, error)
	FindAll(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, error)
	// TransitionStatus moves the row to `to` only if its current status is one of `from`
	// (and, when ownerID is set, only if it belongs to that user). Returns affected rows.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []entity.AppointmentStatus, to entity.AppointmentStatus, ownerID *uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, status entity.AppointmentStatus) (int64, error)
}
