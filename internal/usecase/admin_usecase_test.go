package usecase

import (
	"context"
	"testing"

	"medilink/internal/delivery/dto"
	"medilink/internal/domain/entity"
	"medilink/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardCounts(t *testing.T) {
	hospitals := newMemHospitalRepo()
	doctors := newMemDoctorRepo()
	donors := newMemDonorRepo()
	appointments := newMemAppointmentRepo(doctors, hospitals)

	hospitals.add("City Hospital")
	d := doctors.add("Dr. Sana", "Cardiology")
	doctors.add("Dr. Omar", "Dermatology")
	require.NoError(t, donors.Create(context.Background(), &entity.DonorProfile{UserID: uuid.New(), Name: "Ali"}))
	for _, status := range []entity.AppointmentStatus{entity.AppointmentStatusPending, entity.AppointmentStatusPending, entity.AppointmentStatusApproved} {
		require.NoError(t, appointments.Create(context.Background(), &entity.Appointment{UserID: uuid.New(), DoctorID: &d.ID, Status: status}))
	}

	uc := NewDashboardUsecase(quietLogger(), hospitals, doctors, donors, appointments)
	res, err := uc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &dto.DashboardResponse{Hospitals: 1, Doctors: 2, Donors: 1, PendingAppointments: 2}, res)
}

func TestDonorRegistration(t *testing.T) {
	donors := newMemDonorRepo()
	log := quietLogger()
	uc := NewDonorRegistrationUsecase(passthroughTransactor{}, log, donors, service.NewAuditService(log, &memAuditRepo{}))
	ctx := donorCtx(uuid.New())

	req := &dto.DonorRegistrationRequest{Name: "Ali", CNIC: "35202-1234567-1", BloodGroup: "O+", Age: 30}

	_, err := uc.GetMyRegistration(ctx)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)

	created, err := uc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "O+", created.BloodGroup)

	_, err = uc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrRegistrationExists)

	req.Age = 31
	req.BloodGroup = "AB-"
	updated, err := uc.UpdateMyRegistration(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 31, updated.Age)
	assert.Equal(t, created.ID, updated.ID)

	list, err := uc.GetAllDonors(adminCtx(), "AB-")
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
}

func TestBloodRequestsAreAudited(t *testing.T) {
	requests := &memBloodRequestRepo{}
	audit := &memAuditRepo{}
	log := quietLogger()
	uc := NewBloodRequestUsecase(passthroughTransactor{}, log, requests, service.NewAuditService(log, audit))

	_, err := uc.CreateBloodRequest(context.Background(), &dto.CreateBloodRequestRequest{BloodGroup: "B+"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ctx := adminCtx()
	_, err = uc.CreateBloodRequest(ctx, &dto.CreateBloodRequestRequest{BloodGroup: "B+"})
	require.NoError(t, err)
	_, err = uc.CreateBloodRequest(ctx, &dto.CreateBloodRequestRequest{BloodGroup: "O-"})
	require.NoError(t, err)

	list, err := uc.GetAllBloodRequests(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, "O-", list.Requests[0].BloodGroup)

	auditUC := NewAuditLogUsecase(log, audit)
	logs, err := auditUC.GetAllAuditLogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, logs.Total)

	_, err = auditUC.GetAuditLog(ctx, 99)
	assert.ErrorIs(t, err, ErrAuditLogNotFound)
}
