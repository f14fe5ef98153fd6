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
	ErrHospitalNotFound    = errors.New("hospital not found")
	ErrHospitalEmailExists = errors.New("hospital email already exists")
	ErrHospitalInUse       = errors.New("hospital has appointments and cannot be deleted")
)

type HospitalUsecase interface {
	CreateHospital(ctx context.Context, req *dto.HospitalRequest) (*dto.HospitalResponse, error)
	GetHospital(ctx context.Context, id uuid.UUID) (*dto.HospitalResponse, error)
	GetAllHospitals(ctx context.Context, query *dto.DirectoryQuery) (*dto.HospitalListResponse, error)
	UpdateHospital(ctx context.Context, id uuid.UUID, req *dto.HospitalRequest) (*dto.HospitalResponse, error)
	DeleteHospital(ctx context.Context, id uuid.UUID) error
}

type hospitalUsecase struct {
	transactor   repository.Transactor
	log          *logrus.Logger
	hospitalRepo repository.HospitalRepository
	registry     ledger.Registry
	auditService service.AuditService
}

func NewHospitalUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	hospitalRepo repository.HospitalRepository,
	registry ledger.Registry,
	auditService service.AuditService,
) HospitalUsecase {
	return &hospitalUsecase{
		transactor:   transactor,
		log:          log,
		hospitalRepo: hospitalRepo,
		registry:     registry,
		auditService: auditService,
	}
}

// CreateHospital mirrors the record to the ledger before writing it. A ledger failure
// aborts the create.
func (u *hospitalUsecase) CreateHospital(ctx context.Context, req *dto.HospitalRequest) (*dto.HospitalResponse, error) {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := u.hospitalRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find hospital by email: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrHospitalEmailExists
	}

	hospital := &entity.Hospital{UserID: userID}
	converter.HospitalRequestToEntity(req, hospital)

	txHash, err := u.registry.RegisterHospital(ctx, ledger.HospitalRecord{
		Name:          hospital.Name,
		LicenseID:     hospital.LicenseID,
		Location:      hospital.Location,
		ContactNumber: hospital.ContactNumber,
		Email:         hospital.Email,
		Beds:          hospital.Beds,
		Departments:   hospital.Departments,
	})
	if err != nil {
		return nil, err
	}

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.hospitalRepo.Create(ctx, hospital); err != nil {
			return err
		}
		if err := u.auditService.LogCreate(ctx, &userID, entity.AuditActionHospitalCreate, "hospital", hospital.ID.String(), hospital); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if txHash != "" {
			u.log.Errorf("Hospital %s mined in ledger tx %s but not stored: %+v", hospital.Email, txHash, err)
		}
		if isDuplicateKeyError(err, "email") {
			return nil, ErrHospitalEmailExists
		}
		u.log.Warnf("Failed to create hospital: %+v", err)
		return nil, err
	}

	u.log.Infof("Hospital %s created by %s", hospital.ID, userID)
	return converter.HospitalToResponse(hospital), nil
}

func (u *hospitalUsecase) GetHospital(ctx context.Context, id uuid.UUID) (*dto.HospitalResponse, error) {
	hospital, err := u.hospitalRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find hospital: %+v", err)
		return nil, err
	}
	if hospital == nil {
		return nil, ErrHospitalNotFound
	}

	return converter.HospitalToResponse(hospital), nil
}

func (u *hospitalUsecase) GetAllHospitals(ctx context.Context, query *dto.DirectoryQuery) (*dto.HospitalListResponse, error) {
	filter := &entity.DirectoryFilter{}
	if query != nil {
		filter.Name = strings.TrimSpace(query.Name)
	}

	hospitals, err := u.hospitalRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to find hospitals: %+v", err)
		return nil, err
	}

	return &dto.HospitalListResponse{
		Hospitals: converter.HospitalsToResponses(hospitals),
		Total:     len(hospitals),
	}, nil
}

func (u *hospitalUsecase) UpdateHospital(ctx context.Context, id uuid.UUID, req *dto.HospitalRequest) (*dto.HospitalResponse, error) {
	hospital, err := u.hospitalRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find hospital: %+v", err)
		return nil, err
	}
	if hospital == nil {
		return nil, ErrHospitalNotFound
	}

	if !strings.EqualFold(hospital.Email, req.Email) {
		other, err := u.hospitalRepo.FindByEmail(ctx, req.Email)
		if err != nil {
			u.log.Warnf("Failed to find hospital by email: %+v", err)
			return nil, err
		}
		if other != nil && other.ID != hospital.ID {
			return nil, ErrHospitalEmailExists
		}
	}

	oldValue := *hospital
	converter.HospitalRequestToEntity(req, hospital)

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.hospitalRepo.Update(ctx, hospital); err != nil {
			return err
		}
		if err := u.auditService.LogUpdate(ctx, actorOf(ctx), entity.AuditActionHospitalUpdate, "hospital", hospital.ID.String(), oldValue, hospital); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrHospitalEmailExists
		}
		u.log.Warnf("Failed to update hospital: %+v", err)
		return nil, err
	}

	return converter.HospitalToResponse(hospital), nil
}

func (u *hospitalUsecase) DeleteHospital(ctx context.Context, id uuid.UUID) error {
	hospital, err := u.hospitalRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find hospital: %+v", err)
		return err
	}
	if hospital == nil {
		return ErrHospitalNotFound
	}

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		affected, err := u.hospitalRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrHospitalNotFound
		}
		if err := u.auditService.LogDelete(ctx, actorOf(ctx), entity.AuditActionHospitalDelete, "hospital", id.String(), hospital); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrHospitalNotFound) {
			return err
		}
		if isForeignKeyError(err, "hospital") {
			return ErrHospitalInUse
		}
		u.log.Warnf("Failed to delete hospital: %+v", err)
		return err
	}

	return nil
}
