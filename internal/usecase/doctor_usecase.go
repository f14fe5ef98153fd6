package usecase

import (
	"context"
	"errors"
	"strings"

	"medilink/internal/converter"
	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
	"medilink/internal/domain/repository"
	"medilink/internal/ledger"
	"medilink/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrDoctorInUse    = errors.New("doctor has appointments and cannot be deleted")
)

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.DoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context, query *dto.DirectoryQuery, approvedOnly bool) (*dto.DoctorListResponse, error)
	UpdateDoctor(ctx context.Context, id uuid.UUID, req *dto.DoctorRequest) (*dto.DoctorResponse, error)
	SetDoctorApproval(ctx context.Context, id uuid.UUID, approved bool) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
}

type doctorUsecase struct {
	transactor   repository.Transactor
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	registry     ledger.Registry
	auditService service.AuditService
}

func NewDoctorUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	registry ledger.Registry,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		transactor:   transactor,
		log:          log,
		doctorRepo:   doctorRepo,
		registry:     registry,
		auditService: auditService,
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.DoctorRequest) (*dto.DoctorResponse, error) {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	doctor := &entity.Doctor{UserID: userID}
	converter.DoctorRequestToEntity(req, doctor)

	txHash, err := u.registry.RegisterDoctor(ctx, ledger.DoctorRecord{
		Name:           doctor.Name,
		LicenseNo:      doctor.LicenseNo,
		Specialization: doctor.Specialization,
		Experience:     doctor.Experience,
		Phone:          doctor.Phone,
		Email:          doctor.Email,
		Hospital:       doctor.Hospital,
	})
	if err != nil {
		return nil, err
	}

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.doctorRepo.Create(ctx, doctor); err != nil {
			return err
		}
		if err := u.auditService.LogCreate(ctx, &userID, entity.AuditActionDoctorCreate, "doctor", doctor.ID.String(), doctor); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if txHash != "" {
			u.log.Errorf("Doctor %s mined in ledger tx %s but not stored: %+v", doctor.Name, txHash, err)
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	u.log.Infof("Doctor %s created by %s", doctor.ID, userID)
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context, query *dto.DirectoryQuery, approvedOnly bool) (*dto.DoctorListResponse, error) {
	filter := &entity.DirectoryFilter{ApprovedOnly: approvedOnly}
	if query != nil {
		filter.Name = strings.TrimSpace(query.Name)
		filter.Specialization = strings.TrimSpace(query.Specialization)
	}

	doctors, err := u.doctorRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to find doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *doctorUsecase) UpdateDoctor(ctx context.Context, id uuid.UUID, req *dto.DoctorRequest) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	oldValue := *doctor
	converter.DoctorRequestToEntity(req, doctor)

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.doctorRepo.Update(ctx, doctor); err != nil {
			return err
		}
		if err := u.auditService.LogUpdate(ctx, actorOf(ctx), entity.AuditActionDoctorUpdate, "doctor", doctor.ID.String(), oldValue, doctor); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		u.log.Warnf("Failed to update doctor: %+v", err)
		return nil, err
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) SetDoctorApproval(ctx context.Context, id uuid.UUID, approved bool) (*dto.DoctorResponse, error) {
	var doctor *entity.Doctor
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		affected, err := u.doctorRepo.SetApproval(ctx, id, approved)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrDoctorNotFound
		}

		doctor, err = u.doctorRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if doctor == nil {
			return ErrDoctorNotFound
		}

		newValue := map[string]interface{}{"is_approved": approved}
		if err := u.auditService.LogUpdate(ctx, actorOf(ctx), entity.AuditActionDoctorUpdate, "doctor", id.String(), nil, newValue); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		u.log.Warnf("Failed to set doctor approval: %+v", err)
		return nil, err
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	doctor, err := u.doctorRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		affected, err := u.doctorRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrDoctorNotFound
		}
		if err := u.auditService.LogDelete(ctx, actorOf(ctx), entity.AuditActionDoctorDelete, "doctor", id.String(), doctor); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return err
		}
		if isForeignKeyError(err, "doctor") {
			return ErrDoctorInUse
		}
		u.log.Warnf("Failed to delete doctor: %+v", err)
		return err
	}

	return nil
}
