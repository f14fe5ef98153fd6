package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"medilink/internal/converter"
	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
	"medilink/internal/domain/repository"
	"medilink/internal/service"
	"medilink/internal/worker"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrAppointmentNotFound         = errors.New("appointment not found")
	ErrAppointmentNotOwned         = errors.New("appointment does not belong to this user")
	ErrAppointmentAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrInvalidTransition           = errors.New("appointment cannot move to the requested status")
	ErrAppointmentTarget           = errors.New("exactly one of doctor_id or hospital_id is required")
	ErrMissingPatientFields        = errors.New("name, blood group and contact are required")
	ErrSubmissionInFlight          = errors.New("an identical request is still being processed")
)

const appointmentIdempotencyScope = "appointment"

// StatusDispatcher queues the notification for a status change.
type StatusDispatcher interface {
	DispatchStatusChanged(ctx context.Context, payload worker.AppointmentStatusPayload) error
}

type AppointmentUsecase interface {
	// CreateAppointment returns the appointment and whether this call created it.
	// A replayed request id returns the first appointment with created=false.
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, bool, error)
	GetMyAppointments(ctx context.Context, includeCancelled bool) (*dto.AppointmentListResponse, error)
	CancelAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)

	GetAllAppointments(ctx context.Context, filter entity.AppointmentFilter) (*dto.AppointmentListResponse, error)
	ApproveAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	RejectAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	CompleteAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	transactor      repository.Transactor
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	hospitalRepo    repository.HospitalRepository
	idempotency     *service.IdempotencyStore
	dispatcher      StatusDispatcher
	auditService    service.AuditService
}

func NewAppointmentUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	hospitalRepo repository.HospitalRepository,
	idempotency *service.IdempotencyStore,
	dispatcher StatusDispatcher,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		transactor:      transactor,
		log:             log,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		hospitalRepo:    hospitalRepo,
		idempotency:     idempotency,
		dispatcher:      dispatcher,
		auditService:    auditService,
	}
}

func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, bool, error) {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return nil, false, err
	}

	name := strings.TrimSpace(req.Name)
	bloodGroup := strings.TrimSpace(req.BloodGroup)
	contact := strings.TrimSpace(req.Contact)
	if name == "" || bloodGroup == "" || contact == "" {
		return nil, false, ErrMissingPatientFields
	}
	if (req.DoctorID == nil) == (req.HospitalID == nil) {
		return nil, false, ErrAppointmentTarget
	}

	if req.DoctorID != nil {
		doctor, err := u.doctorRepo.FindByID(ctx, *req.DoctorID)
		if err != nil {
			u.log.Warnf("Failed to find doctor: %+v", err)
			return nil, false, err
		}
		if doctor == nil {
			return nil, false, ErrDoctorNotFound
		}
	} else {
		hospital, err := u.hospitalRepo.FindByID(ctx, *req.HospitalID)
		if err != nil {
			u.log.Warnf("Failed to find hospital: %+v", err)
			return nil, false, err
		}
		if hospital == nil {
			return nil, false, ErrHospitalNotFound
		}
	}

	requestID := strings.TrimSpace(req.RequestID)
	reserved := false
	if requestID != "" {
		existing, err := u.appointmentRepo.FindByRequestID(ctx, userID, requestID)
		if err != nil {
			u.log.Warnf("Failed to find appointment by request id: %+v", err)
			return nil, false, err
		}
		if existing != nil {
			return converter.AppointmentToResponse(existing), false, nil
		}

		reserved, err = u.idempotency.Reserve(ctx, appointmentIdempotencyScope, userID, requestID)
		if err != nil {
			// Redis down: the unique index on (user_id, request_id) still catches replays.
			u.log.Warnf("Failed to reserve request id %s: %+v", requestID, err)
		} else if !reserved {
			return u.replay(ctx, userID, requestID)
		}
	}

	appointment := &entity.Appointment{
		UserID:         userID,
		DoctorID:       req.DoctorID,
		HospitalID:     req.HospitalID,
		Name:           name,
		BloodGroup:     bloodGroup,
		MedicalHistory: req.MedicalHistory,
		Contact:        contact,
		Status:         entity.AppointmentStatusPending,
	}
	if requestID != "" {
		appointment.RequestID = &requestID
	}

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.appointmentRepo.Create(ctx, appointment); err != nil {
			return err
		}
		if err := u.auditService.LogCreate(ctx, &userID, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), appointment); err != nil {
			// Don't fail the transaction for audit log errors
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if reserved {
			if relErr := u.idempotency.Release(ctx, appointmentIdempotencyScope, userID, requestID); relErr != nil {
				u.log.Warnf("Failed to release request id %s: %+v", requestID, relErr)
			}
		}
		if isDuplicateKeyError(err, "request_id") {
			return u.replay(ctx, userID, requestID)
		}
		if isForeignKeyError(err, "doctor") {
			return nil, false, ErrDoctorNotFound
		}
		if isForeignKeyError(err, "hospital") {
			return nil, false, ErrHospitalNotFound
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, false, err
	}

	created, err := u.appointmentRepo.FindByID(ctx, appointment.ID)
	if err != nil || created == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), true, nil
	}

	return converter.AppointmentToResponse(created), true, nil
}

// replay answers a resubmitted request id with the appointment the first submission created.
func (u *appointmentUsecase) replay(ctx context.Context, userID uuid.UUID, requestID string) (*dto.AppointmentResponse, bool, error) {
	existing, err := u.appointmentRepo.FindByRequestID(ctx, userID, requestID)
	if err != nil {
		u.log.Warnf("Failed to find appointment by request id: %+v", err)
		return nil, false, err
	}
	if existing == nil {
		return nil, false, ErrSubmissionInFlight
	}
	return converter.AppointmentToResponse(existing), false, nil
}

func (u *appointmentUsecase) GetMyAppointments(ctx context.Context, includeCancelled bool) (*dto.AppointmentListResponse, error) {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindByUserID(ctx, userID, includeCancelled)
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// CancelAppointment withdraws the caller's own pending or approved appointment.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	return u.transition(ctx, id, entity.AppointmentStatusCancelled, &userID)
}

func (u *appointmentUsecase) GetAllAppointments(ctx context.Context, filter entity.AppointmentFilter) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) ApproveAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, id, entity.AppointmentStatusApproved, nil)
}

func (u *appointmentUsecase) RejectAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, id, entity.AppointmentStatusRejected, nil)
}

func (u *appointmentUsecase) CompleteAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return u.transition(ctx, id, entity.AppointmentStatusCompleted, nil)
}

// transition moves an appointment to target with a guarded update. Repeating an admin
// decision that already holds succeeds without side effects; any other move the
// lifecycle does not allow fails and leaves the row as it was. ownerID scopes the
// update to that user's rows.
func (u *appointmentUsecase) transition(ctx context.Context, id uuid.UUID, target entity.AppointmentStatus, ownerID *uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if ownerID != nil && appointment.UserID != *ownerID {
		return nil, ErrAppointmentNotOwned
	}

	if appointment.Status == target {
		if target == entity.AppointmentStatusCancelled {
			return nil, ErrAppointmentAlreadyCancelled
		}
		return converter.AppointmentToResponse(appointment), nil
	}
	if !appointment.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	oldStatus := appointment.Status
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		affected, err := u.appointmentRepo.TransitionStatus(ctx, id, entity.TransitionSources(target), target, ownerID)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Lost a race with another writer.
			return ErrInvalidTransition
		}

		oldValue := map[string]interface{}{"status": oldStatus}
		newValue := map[string]interface{}{"status": target}
		if err := u.auditService.LogUpdate(ctx, actorOf(ctx), entity.AuditActionForStatus(target), "appointment", id.String(), oldValue, newValue); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return u.settleRace(ctx, id, target)
		}
		u.log.Warnf("Failed to update appointment status: %+v", err)
		return nil, err
	}

	appointment.Status = target
	appointment.UpdatedAt = time.Now().UTC()

	payload := worker.AppointmentStatusPayload{
		AppointmentID: appointment.ID,
		UserID:        appointment.UserID,
		Status:        target,
		Target:        appointment.TargetName(),
	}
	if err := u.dispatcher.DispatchStatusChanged(ctx, payload); err != nil {
		u.log.Warnf("Failed to queue status notification for %s: %+v", id, err)
	}

	return converter.AppointmentToResponse(appointment), nil
}

// settleRace re-reads a row whose guarded update matched nothing. If a concurrent
// writer already applied the same admin decision the call still succeeds.
func (u *appointmentUsecase) settleRace(ctx context.Context, id uuid.UUID, target entity.AppointmentStatus) (*dto.AppointmentResponse, error) {
	current, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if current == nil {
		return nil, ErrAppointmentNotFound
	}
	if current.Status == target {
		if target == entity.AppointmentStatusCancelled {
			return nil, ErrAppointmentAlreadyCancelled
		}
		return converter.AppointmentToResponse(current), nil
	}
	return nil, ErrInvalidTransition
}
