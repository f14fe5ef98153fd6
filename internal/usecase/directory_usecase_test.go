package usecase

import (
	"context"
	"fmt"
	"testing"

	"medilink/internal/delivery/dto"
	"medilink/internal/ledger"
	"medilink/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hospitalRequest(email string) *dto.HospitalRequest {
	beds := 120
	return &dto.HospitalRequest{
		Name:          "City Hospital",
		Location:      "Lahore",
		ContactNumber: "042-1234567",
		Email:         email,
		Beds:          &beds,
		Departments:   "Cardiology, Oncology",
	}
}

func TestSearchBlankQuerySkipsRepositories(t *testing.T) {
	hospitals := newMemHospitalRepo()
	doctors := newMemDoctorRepo()
	uc := NewDirectoryUsecase(quietLogger(), hospitals, doctors)

	res, err := uc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, res.Hospitals)
	assert.Empty(t, res.Doctors)
	assert.Equal(t, 0, hospitals.findCalls)
	assert.Equal(t, 0, doctors.findCalls)
}

func TestSearchMatchesBothTablesCaseInsensitively(t *testing.T) {
	hospitals := newMemHospitalRepo()
	doctors := newMemDoctorRepo()
	hospitals.add("Shifa International")
	hospitals.add("Mayo Hospital")
	doctors.add("Dr. Shifa Khan", "Dermatology")
	doctors.add("Dr. Omar", "Cardiology")
	uc := NewDirectoryUsecase(quietLogger(), hospitals, doctors)

	res, err := uc.Search(context.Background(), "SHIFA")
	require.NoError(t, err)
	require.Len(t, res.Hospitals, 1)
	require.Len(t, res.Doctors, 1)
	assert.Equal(t, "Shifa International", res.Hospitals[0].Name)
	assert.Equal(t, "Dr. Shifa Khan", res.Doctors[0].Name)
}

func TestCreateHospital(t *testing.T) {
	hospitals := newMemHospitalRepo()
	registry := &fakeRegistry{}
	log := quietLogger()
	uc := NewHospitalUsecase(passthroughTransactor{}, log, hospitals, registry, service.NewAuditService(log, &memAuditRepo{}))
	ctx := adminCtx()

	res, err := uc.CreateHospital(ctx, hospitalRequest("info@city.pk"))
	require.NoError(t, err)
	assert.Equal(t, "tel:0421234567", res.Links.Call)
	assert.Equal(t, "mailto:info@city.pk", res.Links.Email)
	require.Len(t, registry.hospitals, 1)
	assert.Equal(t, 120, registry.hospitals[0].Beds)

	_, err = uc.CreateHospital(ctx, hospitalRequest("INFO@city.pk"))
	assert.ErrorIs(t, err, ErrHospitalEmailExists)

	_, err = uc.CreateHospital(context.Background(), hospitalRequest("other@city.pk"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateHospitalLedgerFailureAbortsWrite(t *testing.T) {
	hospitals := newMemHospitalRepo()
	registry := &fakeRegistry{err: fmt.Errorf("%w: rpc down", ledger.ErrLedgerUnavailable)}
	log := quietLogger()
	uc := NewHospitalUsecase(passthroughTransactor{}, log, hospitals, registry, service.NewAuditService(log, &memAuditRepo{}))

	_, err := uc.CreateHospital(adminCtx(), hospitalRequest("info@city.pk"))
	assert.ErrorIs(t, err, ledger.ErrLedgerUnavailable)

	count, err := hospitals.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpdateAndDeleteHospital(t *testing.T) {
	hospitals := newMemHospitalRepo()
	log := quietLogger()
	uc := NewHospitalUsecase(passthroughTransactor{}, log, hospitals, ledger.NoopRegistry{}, service.NewAuditService(log, &memAuditRepo{}))
	ctx := adminCtx()

	a, err := uc.CreateHospital(ctx, hospitalRequest("a@city.pk"))
	require.NoError(t, err)
	_, err = uc.CreateHospital(ctx, hospitalRequest("b@city.pk"))
	require.NoError(t, err)

	_, err = uc.UpdateHospital(ctx, a.ID, hospitalRequest("b@city.pk"))
	assert.ErrorIs(t, err, ErrHospitalEmailExists)

	req := hospitalRequest("a@city.pk")
	req.Name = "City Hospital North"
	updated, err := uc.UpdateHospital(ctx, a.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "City Hospital North", updated.Name)

	require.NoError(t, uc.DeleteHospital(ctx, a.ID))
	assert.ErrorIs(t, uc.DeleteHospital(ctx, a.ID), ErrHospitalNotFound)

	_, err = uc.GetHospital(ctx, a.ID)
	assert.ErrorIs(t, err, ErrHospitalNotFound)
}

func TestDoctorApprovalFiltersPublicListing(t *testing.T) {
	doctors := newMemDoctorRepo()
	registry := &fakeRegistry{}
	log := quietLogger()
	uc := NewDoctorUsecase(passthroughTransactor{}, log, doctors, registry, service.NewAuditService(log, &memAuditRepo{}))
	ctx := adminCtx()

	fee := decimal.RequireFromString("1500.50")
	created, err := uc.CreateDoctor(ctx, &dto.DoctorRequest{
		Name:           "Dr. Sana",
		Specialization: "Cardiology",
		Experience:     12,
		Phone:          "0300 1234567",
		Fee:            &fee,
	})
	require.NoError(t, err)
	assert.False(t, created.IsApproved)
	assert.True(t, created.Fee.Equal(fee))
	require.Len(t, registry.doctors, 1)

	list, err := uc.GetAllDoctors(ctx, &dto.DirectoryQuery{Specialization: "cardio"}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)

	approved, err := uc.SetDoctorApproval(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	list, err = uc.GetAllDoctors(ctx, &dto.DirectoryQuery{Specialization: "cardio"}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	_, err = uc.SetDoctorApproval(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	require.NoError(t, uc.DeleteDoctor(ctx, created.ID))
	_, err = uc.GetDoctor(ctx, created.ID)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}
