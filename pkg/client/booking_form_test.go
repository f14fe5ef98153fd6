package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"medilink/pkg/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsBeforeAnyRequest(t *testing.T) {
	var hits int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	form := c.NewBookingForm()

	doctorID, hospitalID := uuid.New(), uuid.New()
	cases := []struct {
		name  string
		edit  func(in *AppointmentInput)
		field string
	}{
		{"blank name", func(in *AppointmentInput) { in.Name = "  " }, "name"},
		{"missing blood group", func(in *AppointmentInput) { in.BloodGroup = "" }, "blood_group"},
		{"bad blood group", func(in *AppointmentInput) { in.BloodGroup = "C+" }, "blood_group"},
		{"missing contact", func(in *AppointmentInput) { in.Contact = "" }, "contact"},
		{"no target", func(in *AppointmentInput) { in.DoctorID = nil }, "target"},
		{"two targets", func(in *AppointmentInput) { in.DoctorID, in.HospitalID = &doctorID, &hospitalID }, "target"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.edit(&in)
			_, _, err := form.Submit(context.Background(), testSession(), in)
			var v *ValidationError
			require.ErrorAs(t, err, &v)
			assert.Contains(t, v.Fields, tc.field)
		})
	}
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestBookingFormSingleInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var hits int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		close(entered)
		<-release
		response.Success(w, http.StatusCreated, "Appointment created successfully", Appointment{ID: uuid.New(), Status: "pending"})
	}))
	form := c.NewBookingForm()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, _, firstErr = form.Submit(context.Background(), testSession(), validInput())
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never reached the server")
	}

	_, _, err := form.Submit(context.Background(), testSession(), validInput())
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestBookingFormReusesRequestIDUntilReset(t *testing.T) {
	var ids []string
	var mu sync.Mutex
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in AppointmentInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		mu.Lock()
		ids = append(ids, in.RequestID)
		mu.Unlock()
		response.Error(w, http.StatusInternalServerError, "Failed to create appointment", nil)
	}))
	form := c.NewBookingForm()

	for i := 0; i < 2; i++ {
		_, _, err := form.Submit(context.Background(), testSession(), validInput())
		var b *BackendError
		require.ErrorAs(t, err, &b)
		assert.Equal(t, "Failed to create appointment", b.Message)
	}
	form.Reset()
	_, _, _ = form.Submit(context.Background(), testSession(), validInput())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ids, 3)
	assert.NotEmpty(t, ids[0])
	assert.Equal(t, ids[0], ids[1])
	assert.NotEqual(t, ids[1], ids[2])
	assert.Equal(t, ids[2], form.RequestID())
}
