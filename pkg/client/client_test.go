package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"medilink/pkg/response"
	"medilink/pkg/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithLogger(quietLogger()))
}

func testSession() *session.Session {
	now := time.Now()
	return &session.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         &session.User{ID: uuid.New(), Email: "ali@example.com", EmailConfirmedAt: &now},
	}
}

func validInput() AppointmentInput {
	doctorID := uuid.New()
	return AppointmentInput{DoctorID: &doctorID, Name: "Ali", BloodGroup: "O+", Contact: "0300-0000000"}
}

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name  string
		write func(w http.ResponseWriter)
		check func(t *testing.T, err error)
	}{
		{
			name:  "field errors",
			write: func(w http.ResponseWriter) { response.ValidationError(w, map[string]string{"Name": "Name is required"}) },
			check: func(t *testing.T, err error) {
				var v *ValidationError
				require.ErrorAs(t, err, &v)
				assert.Equal(t, "Name is required", v.Fields["Name"])
			},
		},
		{
			name:  "bad request without fields",
			write: func(w http.ResponseWriter) { response.BadRequest(w, "Invalid status filter") },
			check: func(t *testing.T, err error) {
				var b *BackendError
				require.ErrorAs(t, err, &b)
				assert.Equal(t, "Invalid status filter", b.Message)
			},
		},
		{
			name:  "unauthorized",
			write: func(w http.ResponseWriter) { response.Unauthorized(w, "Invalid token") },
			check: func(t *testing.T, err error) {
				var a *AuthError
				require.ErrorAs(t, err, &a)
				assert.Equal(t, http.StatusUnauthorized, a.StatusCode)
			},
		},
		{
			name:  "forbidden",
			write: func(w http.ResponseWriter) { response.Forbidden(w, "Email not confirmed") },
			check: func(t *testing.T, err error) {
				var a *AuthError
				require.ErrorAs(t, err, &a)
				assert.Equal(t, "Email not confirmed", Message(err))
			},
		},
		{
			name:  "backend message verbatim",
			write: func(w http.ResponseWriter) { response.Conflict(w, "Appointment is already cancelled") },
			check: func(t *testing.T, err error) {
				var b *BackendError
				require.ErrorAs(t, err, &b)
				assert.Equal(t, http.StatusConflict, b.StatusCode)
				assert.Equal(t, "Appointment is already cancelled", Message(err))
			},
		},
		{
			name: "garbage body",
			write: func(w http.ResponseWriter) {
				w.WriteHeader(http.StatusBadGateway)
				fmt.Fprint(w, "<html>proxy error</html>")
			},
			check: func(t *testing.T, err error) {
				var u *UnexpectedError
				require.ErrorAs(t, err, &u)
				assert.Equal(t, "Something went wrong. Please try again.", Message(err))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { tc.write(w) }))
			_, err := c.ListAppointments(context.Background(), testSession(), false)
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestAuthenticatedCallsNeedSession(t *testing.T) {
	var hits int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))

	_, _, err := c.CreateAppointment(context.Background(), nil, validInput())
	var a *AuthError
	require.ErrorAs(t, err, &a)
	assert.Equal(t, "no active session found", a.Message)

	_, err = c.CancelAppointment(context.Background(), &session.Session{}, uuid.New())
	require.ErrorAs(t, err, &a)

	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestCreateAppointmentCreatedAndReplayed(t *testing.T) {
	seen := map[string]Appointment{}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/appointments", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))

		var in AppointmentInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if prev, ok := seen[in.RequestID]; ok {
			response.Success(w, http.StatusOK, "Appointment already submitted", prev)
			return
		}
		a := Appointment{ID: uuid.New(), DoctorID: in.DoctorID, Name: in.Name, BloodGroup: in.BloodGroup, Contact: in.Contact, Status: "pending"}
		seen[in.RequestID] = a
		response.Success(w, http.StatusCreated, "Appointment created successfully", a)
	}))

	in := validInput()
	in.RequestID = "req-1"
	first, created, err := c.CreateAppointment(context.Background(), testSession(), in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "pending", first.Status)
	assert.Equal(t, in.DoctorID, first.DoctorID)

	again, created, err := c.CreateAppointment(context.Background(), testSession(), in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
}

func TestListAppointmentsIncludeCancelled(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("include_cancelled"))
		response.Success(w, http.StatusOK, "ok", map[string]interface{}{
			"appointments": []Appointment{{ID: uuid.New(), Status: "cancelled", DoctorName: "Dr. Sana"}},
			"total":        1,
		})
	}))

	list, err := c.ListAppointments(context.Background(), testSession(), true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dr. Sana", list[0].DoctorName)
}

func TestRefreshAndSignOut(t *testing.T) {
	var signedOut atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh", body["refresh_token"])
		response.Success(w, http.StatusOK, "ok", session.Session{AccessToken: "access-2", RefreshToken: "refresh-2"})
	})
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-2", r.Header.Get("Authorization"))
		signedOut.Store(true)
		response.Success(w, http.StatusOK, "Logout successful", nil)
	})
	c := newTestClient(t, mux)

	next, err := c.Refresh(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, "access-2", next.AccessToken)

	require.NoError(t, c.SignOut(context.Background(), next))
	assert.True(t, signedOut.Load())

	_, err = c.Refresh(context.Background(), &session.Session{AccessToken: "x"})
	var a *AuthError
	assert.ErrorAs(t, err, &a)
}

func TestSearchEscapesQuery(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "city & care", r.URL.Query().Get("q"))
		assert.Empty(t, r.Header.Get("Authorization"))
		response.Success(w, http.StatusOK, "ok", SearchResult{
			Query:     "city & care",
			Hospitals: []Hospital{{Name: "City Care", Links: ContactLinks{Call: "tel:0421234567"}}},
		})
	}))

	res, err := c.Search(context.Background(), "city & care")
	require.NoError(t, err)
	require.Len(t, res.Hospitals, 1)
	assert.Equal(t, "tel:0421234567", res.Hospitals[0].Links.Call)
	assert.Empty(t, res.Doctors)
}

func TestMessageFallsBackToGeneric(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Something went wrong. Please try again.", Message(errors.New("dial tcp: refused")))
	assert.Equal(t, "submission already in progress", Message(ErrSubmitInFlight))
}
