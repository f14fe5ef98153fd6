package usecase

import (
	"context"
	"strconv"
	"time"

	"medilink/internal/converter"
	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
	"medilink/internal/domain/repository"
	"medilink/internal/service"

	"github.com/sirupsen/logrus"
)

type BloodRequestUsecase interface {
	CreateBloodRequest(ctx context.Context, req *dto.CreateBloodRequestRequest) (*dto.BloodRequestResponse, error)
	GetAllBloodRequests(ctx context.Context) (*dto.BloodRequestListResponse, error)
}

type bloodRequestUsecase struct {
	transactor       repository.Transactor
	log              *logrus.Logger
	bloodRequestRepo repository.BloodRequestRepository
	auditService     service.AuditService
}

func NewBloodRequestUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	bloodRequestRepo repository.BloodRequestRepository,
	auditService service.AuditService,
) BloodRequestUsecase {
	return &bloodRequestUsecase{
		transactor:       transactor,
		log:              log,
		bloodRequestRepo: bloodRequestRepo,
		auditService:     auditService,
	}
}

func (u *bloodRequestUsecase) CreateBloodRequest(ctx context.Context, req *dto.CreateBloodRequestRequest) (*dto.BloodRequestResponse, error) {
	userID, err := requirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	request := &entity.BloodRequest{
		UserID:      userID,
		BloodGroup:  req.BloodGroup,
		RequestedAt: time.Now().UTC(),
	}

	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.bloodRequestRepo.Create(ctx, request); err != nil {
			return err
		}
		if err := u.auditService.LogCreate(ctx, &userID, entity.AuditActionBloodRequestCreate, "blood_request", strconv.FormatInt(request.ID, 10), request); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		u.log.Warnf("Failed to create blood request: %+v", err)
		return nil, err
	}

	responses := converter.BloodRequestsToResponses([]entity.BloodRequest{*request})
	return &responses[0], nil
}

func (u *bloodRequestUsecase) GetAllBloodRequests(ctx context.Context) (*dto.BloodRequestListResponse, error) {
	requests, err := u.bloodRequestRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to find blood requests: %+v", err)
		return nil, err
	}

	return &dto.BloodRequestListResponse{
		Requests: converter.BloodRequestsToResponses(requests),
		Total:    len(requests),
	}, nil
}
