package usecase

import (
	"context"
	"errors"
	"strings"

	"medilink/internal/converter"
	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
	"medilink/internal/domain/repository"
	"medilink/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrRegistrationNotFound = errors.New("donor registration not found")
	ErrRegistrationExists   = errors.New("donor registration already exists")
)

type DonorRegistrationUsecase interface {
	Register(ctx context.Context, req *dto.DonorRegistrationRequest) (*dto.DonorRegistrationResponse, error)
	GetMyRegistration(ctx context.Context) (*dto.DonorRegistrationResponse, error)
	UpdateMyRegistration(ctx context.Context, req *dto.DonorRegistrationRequest) (*dto.DonorRegistrationResponse, error)
	GetAllDonors(ctx context.Context, query string) (*dto.DonorListResponse, error)
}

type donorRegistrationUsecase struct {
	transactor   repository.Transactor
	log          *logrus.Logger
	donorRepo    repository.DonorProfileRepository
	auditService service.AuditService
}

func NewDonorRegistrationUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	donorRepo repository.DonorProfileRepository,
	auditService service.AuditService,
) DonorRegistrationUsecase {
	return &donorRegistrationUsecase{
		transactor:   transactor,
		log:          log,
		donorRepo:    donorRepo,
		auditService: auditService,
	}
}

func (u *donorRegistrationUsecase) Register(ctx context.Context, req *dto.DonorRegistrationRequest) (*dto.DonorRegistrationResponse, error) {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := u.donorRepo.FindByUserID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find donor registration: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrRegistrationExists
	}

	profile := &entity.DonorProfile{
		UserID:         userID,
		Name:           strings.TrimSpace(req.Name),
		CNIC:           req.CNIC,
		BloodGroup:     req.BloodGroup,
		Age:            req.Age,
		MedicalHistory: req.MedicalHistory,
	}

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.donorRepo.Create(ctx, profile); err != nil {
			return err
		}
		if err := u.auditService.LogCreate(ctx, &userID, entity.AuditActionRegistrationCreate, "registration", profile.ID.String(), profile); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		if isDuplicateKeyError(err, "user_id") {
			return nil, ErrRegistrationExists
		}
		u.log.Warnf("Failed to create donor registration: %+v", err)
		return nil, err
	}

	return converter.DonorProfileToResponse(profile), nil
}

func (u *donorRegistrationUsecase) GetMyRegistration(ctx context.Context) (*dto.DonorRegistrationResponse, error) {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := u.donorRepo.FindByUserID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find donor registration: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrRegistrationNotFound
	}

	return converter.DonorProfileToResponse(profile), nil
}

func (u *donorRegistrationUsecase) UpdateMyRegistration(ctx context.Context, req *dto.DonorRegistrationRequest) (*dto.DonorRegistrationResponse, error) {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := u.donorRepo.FindByUserID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find donor registration: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrRegistrationNotFound
	}

	oldValue := *profile
	profile.Name = strings.TrimSpace(req.Name)
	profile.CNIC = req.CNIC
	profile.BloodGroup = req.BloodGroup
	profile.Age = req.Age
	profile.MedicalHistory = req.MedicalHistory

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.donorRepo.Update(ctx, profile); err != nil {
			return err
		}
		if err := u.auditService.LogUpdate(ctx, &userID, entity.AuditActionRegistrationUpdate, "registration", profile.ID.String(), oldValue, profile); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		u.log.Warnf("Failed to update donor registration: %+v", err)
		return nil, err
	}

	return converter.DonorProfileToResponse(profile), nil
}

// GetAllDonors lists registrations for the admin panel, matching name or blood group.
func (u *donorRegistrationUsecase) GetAllDonors(ctx context.Context, query string) (*dto.DonorListResponse, error) {
	profiles, err := u.donorRepo.FindAll(ctx, strings.TrimSpace(query))
	if err != nil {
		u.log.Warnf("Failed to find donors: %+v", err)
		return nil, err
	}

	return &dto.DonorListResponse{
		Donors: converter.DonorProfilesToResponses(profiles),
		Total:  len(profiles),
	}, nil
}
