package usecase

import (
	"context"
	"strings"

	"medilink/internal/converter"
	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
	"medilink/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

type DirectoryUsecase interface {
	Search(ctx context.Context, query string) (*dto.SearchResponse, error)
}

type directoryUsecase struct {
	log          *logrus.Logger
	hospitalRepo repository.HospitalRepository
	doctorRepo   repository.DoctorRepository
}

func NewDirectoryUsecase(log *logrus.Logger, hospitalRepo repository.HospitalRepository, doctorRepo repository.DoctorRepository) DirectoryUsecase {
	return &directoryUsecase{
		log:          log,
		hospitalRepo: hospitalRepo,
		doctorRepo:   doctorRepo,
	}
}

// Search matches hospital and doctor names case-insensitively. Both tables are queried
// concurrently; a blank query returns empty lists without touching the database.
func (u *directoryUsecase) Search(ctx context.Context, query string) (*dto.SearchResponse, error) {
	query = strings.TrimSpace(query)
	result := &dto.SearchResponse{
		Query:     query,
		Hospitals: []dto.HospitalResponse{},
		Doctors:   []dto.DoctorResponse{},
	}
	if query == "" {
		return result, nil
	}

	var (
		hospitals []entity.Hospital
		doctors   []entity.Doctor
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		hospitals, err = u.hospitalRepo.FindAll(ctx, &entity.DirectoryFilter{Name: query})
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		doctors, err = u.doctorRepo.FindAll(ctx, &entity.DirectoryFilter{Name: query})
		return err
	})
	if err := p.Wait(); err != nil {
		u.log.Warnf("Failed to search directory for %q: %+v", query, err)
		return nil, err
	}

	result.Hospitals = converter.HospitalsToResponses(hospitals)
	result.Doctors = converter.DoctorsToResponses(doctors)
	return result, nil
}
