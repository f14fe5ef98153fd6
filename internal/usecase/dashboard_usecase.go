package usecase

import (
	"context"

	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
	"medilink/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

type DashboardUsecase interface {
	GetDashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardUsecase struct {
	log             *logrus.Logger
	hospitalRepo    repository.HospitalRepository
	doctorRepo      repository.DoctorRepository
	donorRepo       repository.DonorProfileRepository
	appointmentRepo repository.AppointmentRepository
}

func NewDashboardUsecase(
	log *logrus.Logger,
	hospitalRepo repository.HospitalRepository,
	doctorRepo repository.DoctorRepository,
	donorRepo repository.DonorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
) DashboardUsecase {
	return &dashboardUsecase{
		log:             log,
		hospitalRepo:    hospitalRepo,
		doctorRepo:      doctorRepo,
		donorRepo:       donorRepo,
		appointmentRepo: appointmentRepo,
	}
}

func (u *dashboardUsecase) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	res := &dto.DashboardResponse{}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) (err error) {
		res.Hospitals, err = u.hospitalRepo.Count(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		res.Doctors, err = u.doctorRepo.Count(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		res.Donors, err = u.donorRepo.Count(ctx)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		res.PendingAppointments, err = u.appointmentRepo.CountByStatus(ctx, entity.AppointmentStatusPending)
		return err
	})
	if err := p.Wait(); err != nil {
		u.log.Warnf("Failed to load dashboard counts: %+v", err)
		return nil, err
	}

	return res, nil
}
