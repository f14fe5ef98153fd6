package client

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"medilink/pkg/session"
	"medilink/pkg/validator"

	"github.com/google/uuid"
)

// BookingForm submits one appointment request. It validates locally before any network
// call, refuses a second submission while one is running, and sends the same request id
// on every retry so the server stores at most one appointment per form.
type BookingForm struct {
	client     *Client
	submitting atomic.Bool

	mu        sync.Mutex
	requestID string
}

func (c *Client) NewBookingForm() *BookingForm {
	return &BookingForm{client: c, requestID: uuid.NewString()}
}

// RequestID is the idempotency key the form sends.
func (f *BookingForm) RequestID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestID
}

// Reset starts a new booking with a fresh request id.
func (f *BookingForm) Reset() {
	f.mu.Lock()
	f.requestID = uuid.NewString()
	f.mu.Unlock()
}

// Validate checks the fields the server requires.
func Validate(in AppointmentInput) error {
	fields := make(map[string]string)
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	switch bg := strings.TrimSpace(in.BloodGroup); {
	case bg == "":
		fields["blood_group"] = "blood_group is required"
	case !validator.IsBloodGroup(bg):
		fields["blood_group"] = "blood_group must be a blood group like A+, O- or AB+"
	}
	if strings.TrimSpace(in.Contact) == "" {
		fields["contact"] = "contact is required"
	}
	switch {
	case in.DoctorID == nil && in.HospitalID == nil:
		fields["target"] = "choose a doctor or a hospital"
	case in.DoctorID != nil && in.HospitalID != nil:
		fields["target"] = "choose either a doctor or a hospital, not both"
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "Validation failed", Fields: fields}
	}
	return nil
}

// Submit validates in and books it. It returns ErrSubmitInFlight while an earlier call
// is still running.
func (f *BookingForm) Submit(ctx context.Context, s *session.Session, in AppointmentInput) (*Appointment, bool, error) {
	if err := Validate(in); err != nil {
		return nil, false, err
	}
	if !f.submitting.CompareAndSwap(false, true) {
		return nil, false, ErrSubmitInFlight
	}
	defer f.submitting.Store(false)

	in.RequestID = f.RequestID()
	in.Name = strings.TrimSpace(in.Name)
	in.BloodGroup = strings.TrimSpace(in.BloodGroup)
	in.Contact = strings.TrimSpace(in.Contact)
	return f.client.CreateAppointment(ctx, s, in)
}
