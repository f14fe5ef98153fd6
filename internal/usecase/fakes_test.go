package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"medilink/config"
	"medilink/internal/domain/entity"
	"medilink/internal/ledger"
	"medilink/internal/service"
	"medilink/internal/worker"
	"medilink/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
}

// passthroughTransactor runs fn directly; the in-memory repositories have nothing to roll back.
type passthroughTransactor struct{}

func (passthroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*entity.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(user.Email) {
			return uniqueViolation("uq_users_email")
		}
	}
	user.ID = uuid.New()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok && u.EmailConfirmedAt == nil {
		u.EmailConfirmedAt = &at
	}
	return nil
}

func (r *memUserRepo) ResetUnconfirmedPassword(ctx context.Context, id uuid.UUID, passwordHash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.EmailConfirmedAt != nil {
		return 0, nil
	}
	u.Password = passwordHash
	return 1, nil
}

func (r *memUserRepo) UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.DeviceToken = token
	}
	return nil
}

type memHospitalRepo struct {
	mu        sync.Mutex
	hospitals map[uuid.UUID]*entity.Hospital
	findCalls int
}

func newMemHospitalRepo() *memHospitalRepo {
	return &memHospitalRepo{hospitals: map[uuid.UUID]*entity.Hospital{}}
}

func (r *memHospitalRepo) add(name string) *entity.Hospital {
	h := &entity.Hospital{ID: uuid.New(), Name: name, Email: strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@example.com"}
	r.hospitals[h.ID] = h
	return h
}

func (r *memHospitalRepo) Create(ctx context.Context, hospital *entity.Hospital) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.hospitals {
		if strings.EqualFold(h.Email, hospital.Email) {
			return uniqueViolation("uq_hospitals_email")
		}
	}
	hospital.ID = uuid.New()
	cp := *hospital
	r.hospitals[hospital.ID] = &cp
	return nil
}

func (r *memHospitalRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hospitals[id]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (r *memHospitalRepo) FindByEmail(ctx context.Context, email string) (*entity.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.hospitals {
		if strings.EqualFold(h.Email, email) {
			cp := *h
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memHospitalRepo) FindAll(ctx context.Context, filter *entity.DirectoryFilter) ([]entity.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	var out []entity.Hospital
	for _, h := range r.hospitals {
		if filter != nil && filter.Name != "" && !strings.Contains(strings.ToLower(h.Name), strings.ToLower(filter.Name)) {
			continue
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memHospitalRepo) Update(ctx context.Context, hospital *entity.Hospital) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *hospital
	r.hospitals[hospital.ID] = &cp
	return nil
}

func (r *memHospitalRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hospitals[id]; !ok {
		return 0, nil
	}
	delete(r.hospitals, id)
	return 1, nil
}

func (r *memHospitalRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.hospitals)), nil
}

type memDoctorRepo struct {
	mu        sync.Mutex
	doctors   map[uuid.UUID]*entity.Doctor
	findCalls int
}

func newMemDoctorRepo() *memDoctorRepo {
	return &memDoctorRepo{doctors: map[uuid.UUID]*entity.Doctor{}}
}

func (r *memDoctorRepo) add(name, specialization string) *entity.Doctor {
	d := &entity.Doctor{ID: uuid.New(), Name: name, Specialization: specialization}
	r.doctors[d.ID] = d
	return d
}

func (r *memDoctorRepo) Create(ctx context.Context, doctor *entity.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doctor.ID = uuid.New()
	cp := *doctor
	r.doctors[doctor.ID] = &cp
	return nil
}

func (r *memDoctorRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memDoctorRepo) FindAll(ctx context.Context, filter *entity.DirectoryFilter) ([]entity.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	var out []entity.Doctor
	for _, d := range r.doctors {
		if filter != nil {
			if filter.Name != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(filter.Name)) {
				continue
			}
			if filter.Specialization != "" && !strings.Contains(strings.ToLower(d.Specialization), strings.ToLower(filter.Specialization)) {
				continue
			}
			if filter.ApprovedOnly && !d.IsApproved {
				continue
			}
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memDoctorRepo) Update(ctx context.Context, doctor *entity.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *doctor
	r.doctors[doctor.ID] = &cp
	return nil
}

func (r *memDoctorRepo) SetApproval(ctx context.Context, id uuid.UUID, approved bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return 0, nil
	}
	d.IsApproved = approved
	return 1, nil
}

func (r *memDoctorRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[id]; !ok {
		return 0, nil
	}
	delete(r.doctors, id)
	return 1, nil
}

func (r *memDoctorRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.doctors)), nil
}

// memAppointmentRepo joins target names from the doctor and hospital fakes like the
// gorm preload does.
type memAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*entity.Appointment
	doctors      *memDoctorRepo
	hospitals    *memHospitalRepo
}

func newMemAppointmentRepo(doctors *memDoctorRepo, hospitals *memHospitalRepo) *memAppointmentRepo {
	return &memAppointmentRepo{
		appointments: map[uuid.UUID]*entity.Appointment{},
		doctors:      doctors,
		hospitals:    hospitals,
	}
}

func (r *memAppointmentRepo) withTargets(a entity.Appointment) *entity.Appointment {
	if a.DoctorID != nil {
		a.Doctor, _ = r.doctors.FindByID(context.Background(), *a.DoctorID)
	}
	if a.HospitalID != nil {
		a.Hospital, _ = r.hospitals.FindByID(context.Background(), *a.HospitalID)
	}
	return &a
}

func (r *memAppointmentRepo) Create(ctx context.Context, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appointment.RequestID != nil {
		for _, a := range r.appointments {
			if a.UserID == appointment.UserID && a.RequestID != nil && *a.RequestID == *appointment.RequestID {
				return uniqueViolation("uq_appointments_request_id")
			}
		}
	}
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now().Add(time.Duration(len(r.appointments)) * time.Millisecond)
	appointment.UpdatedAt = appointment.CreatedAt
	cp := *appointment
	r.appointments[appointment.ID] = &cp
	return nil
}

func (r *memAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, nil
	}
	return r.withTargets(*a), nil
}

func (r *memAppointmentRepo) FindByRequestID(ctx context.Context, userID uuid.UUID, requestID string) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.UserID == userID && a.RequestID != nil && *a.RequestID == requestID {
			return r.withTargets(*a), nil
		}
	}
	return nil, nil
}

func (r *memAppointmentRepo) sorted(keep func(*entity.Appointment) bool) []entity.Appointment {
	var out []entity.Appointment
	for _, a := range r.appointments {
		if keep(a) {
			out = append(out, *r.withTargets(*a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memAppointmentRepo) FindByUserID(ctx context.Context, userID uuid.UUID, includeCancelled bool) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(a *entity.Appointment) bool {
		return a.UserID == userID && (includeCancelled || a.Status != entity.AppointmentStatusCancelled)
	}), nil
}

func (r *memAppointmentRepo) FindAll(ctx context.Context, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(a *entity.Appointment) bool {
		if filter.Status != "" && a.Status != filter.Status {
			return false
		}
		return filter.Query == "" || strings.Contains(strings.ToLower(a.Name), strings.ToLower(filter.Query))
	}), nil
}

func (r *memAppointmentRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from []entity.AppointmentStatus, to entity.AppointmentStatus, ownerID *uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return 0, nil
	}
	if ownerID != nil && a.UserID != *ownerID {
		return 0, nil
	}
	for _, s := range from {
		if a.Status == s {
			a.Status = to
			a.UpdatedAt = time.Now()
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memAppointmentRepo) CountByStatus(ctx context.Context, status entity.AppointmentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.appointments {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

// status reads the stored row directly.
func (r *memAppointmentRepo) status(id uuid.UUID) entity.AppointmentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appointments[id].Status
}

type memDonorRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*entity.DonorProfile
}

func newMemDonorRepo() *memDonorRepo {
	return &memDonorRepo{profiles: map[uuid.UUID]*entity.DonorProfile{}}
}

func (r *memDonorRepo) Create(ctx context.Context, profile *entity.DonorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.UserID]; ok {
		return uniqueViolation("uq_registrations_user_id")
	}
	profile.ID = uuid.New()
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *memDonorRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DonorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memDonorRepo) Update(ctx context.Context, profile *entity.DonorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *memDonorRepo) FindAll(ctx context.Context, query string) ([]entity.DonorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DonorProfile
	for _, p := range r.profiles {
		if query == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) || p.BloodGroup == query {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memDonorRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.profiles)), nil
}

type memBloodRequestRepo struct {
	mu       sync.Mutex
	requests []entity.BloodRequest
}

func (r *memBloodRequestRepo) Create(ctx context.Context, request *entity.BloodRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.ID = int64(len(r.requests) + 1)
	r.requests = append(r.requests, *request)
	return nil
}

func (r *memBloodRequestRepo) FindAll(ctx context.Context) ([]entity.BloodRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.BloodRequest, len(r.requests))
	for i := range r.requests {
		out[len(r.requests)-1-i] = r.requests[i]
	}
	return out, nil
}

type memAuditRepo struct {
	mu   sync.Mutex
	logs []entity.AuditLog
}

func (r *memAuditRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memAuditRepo) FindAll(ctx context.Context) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.AuditLog(nil), r.logs...), nil
}

func (r *memAuditRepo) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.logs {
		if r.logs[i].ID == id {
			cp := r.logs[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.logs))
	for i, l := range r.logs {
		out[i] = l.Action
	}
	return out
}

type recordingDispatcher struct {
	mu       sync.Mutex
	payloads []worker.AppointmentStatusPayload
	err      error
}

func (d *recordingDispatcher) DispatchStatusChanged(ctx context.Context, payload worker.AppointmentStatusPayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.payloads = append(d.payloads, payload)
	return d.err
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.payloads)
}

type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{codes: map[string]string{}}
}

func (m *captureMailer) SendOTP(ctx context.Context, to string, purpose service.OTPPurpose, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[string(purpose)+":"+to] = code
	return nil
}

func (m *captureMailer) code(t *testing.T, purpose service.OTPPurpose, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[string(purpose)+":"+to]
	require.True(t, ok, "no %s code mailed to %s", purpose, to)
	return code
}

func (m *captureMailer) sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.codes)
}

type fakeRegistry struct {
	err       error
	hospitals []ledger.HospitalRecord
	doctors   []ledger.DoctorRecord
}

func (r *fakeRegistry) RegisterHospital(ctx context.Context, record ledger.HospitalRecord) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.hospitals = append(r.hospitals, record)
	return "0xabc", nil
}

func (r *fakeRegistry) RegisterDoctor(ctx context.Context, record ledger.DoctorRecord) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.doctors = append(r.doctors, record)
	return "0xdef", nil
}

var errBoom = errors.New("boom")
