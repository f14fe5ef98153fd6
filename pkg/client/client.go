// Package client is a Go SDK for the medilink API. Every authenticated call takes the
// caller's session explicitly; the client keeps no signed-in state of its own.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"medilink/pkg/session"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const apiPrefix = "/api/v1"

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(log *logrus.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

// SessionStatus is the server's classification of a session.
type SessionStatus struct {
	Session *session.Session `json:"session"`
	Route   session.Route    `json:"route"`
}

// AppointmentInput is the patient form. Exactly one of DoctorID and HospitalID is set.
type AppointmentInput struct {
	RequestID      string     `json:"request_id,omitempty"`
	DoctorID       *uuid.UUID `json:"doctor_id,omitempty"`
	HospitalID     *uuid.UUID `json:"hospital_id,omitempty"`
	Name           string     `json:"name"`
	BloodGroup     string     `json:"blood_group"`
	MedicalHistory *string    `json:"medical_history,omitempty"`
	Contact        string     `json:"contact"`
}

type Appointment struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	DoctorID       *uuid.UUID `json:"doctor_id,omitempty"`
	DoctorName     string     `json:"doctor_name,omitempty"`
	HospitalID     *uuid.UUID `json:"hospital_id,omitempty"`
	HospitalName   string     `json:"hospital_name,omitempty"`
	Name           string     `json:"name"`
	BloodGroup     string     `json:"blood_group"`
	MedicalHistory *string    `json:"medical_history,omitempty"`
	Contact        string     `json:"contact"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ContactLinks struct {
	Call  string `json:"call,omitempty"`
	Email string `json:"email,omitempty"`
}

type Hospital struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	Location      string       `json:"location"`
	ContactNumber string       `json:"contact_number"`
	Email         string       `json:"email"`
	Links         ContactLinks `json:"links"`
}

type Doctor struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	Specialization string       `json:"specialization"`
	Hospital       string       `json:"hospital,omitempty"`
	IsApproved     bool         `json:"is_approved"`
	Links          ContactLinks `json:"links"`
}

type SearchResult struct {
	Query     string     `json:"query"`
	Hospitals []Hospital `json:"hospitals"`
	Doctors   []Doctor   `json:"doctors"`
}

// do sends one request and decodes the envelope's data into out. It returns the HTTP
// status so callers can tell a created resource from a replayed one.
func (c *Client) do(ctx context.Context, method, path string, s *session.Session, in, out interface{}) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, c.unexpected(method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return 0, c.unexpected(method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil && s.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, c.unexpected(method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, c.unexpected(method, path, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return resp.StatusCode, c.unexpected(method, path, fmt.Errorf("decode data: %w", err))
			}
		}
		return resp.StatusCode, nil
	}

	return resp.StatusCode, classify(resp.StatusCode, &env)
}

func classify(status int, env *envelope) error {
	switch status {
	case http.StatusBadRequest:
		var fields map[string]string
		if len(env.Error) > 0 && json.Unmarshal(env.Error, &fields) == nil && len(fields) > 0 {
			return &ValidationError{Message: env.Message, Fields: fields}
		}
		return &BackendError{StatusCode: status, Message: env.Message}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{StatusCode: status, Message: env.Message}
	default:
		return &BackendError{StatusCode: status, Message: env.Message}
	}
}

func (c *Client) unexpected(method, path string, err error) error {
	c.log.Errorf("Request %s %s failed: %+v", method, path, err)
	return &UnexpectedError{Err: err}
}

func requireSession(s *session.Session) error {
	if s == nil || s.AccessToken == "" {
		return &AuthError{StatusCode: http.StatusUnauthorized, Message: ErrNoSession.Error()}
	}
	return nil
}

// Signup creates an unconfirmed account; the server emails a verification code.
func (c *Client) Signup(ctx context.Context, email, password string) (*session.User, error) {
	var user session.User
	_, err := c.do(ctx, http.MethodPost, "/auth/signup", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyOTP confirms a code of the given type ("signup" or "email") and signs in.
func (c *Client) VerifyOTP(ctx context.Context, email, token, otpType string) (*session.Session, error) {
	var s session.Session
	_, err := c.do(ctx, http.MethodPost, "/auth/verify-otp", nil, map[string]string{
		"email": email,
		"token": token,
		"type":  otpType,
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) RequestOTP(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/otp", nil, map[string]string{"email": email}, nil)
	return err
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	var s session.Session
	_, err := c.do(ctx, http.MethodPost, "/auth/signin", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SignOut revokes both tokens of the session.
func (c *Client) SignOut(ctx context.Context, s *session.Session) error {
	if err := requireSession(s); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", s, map[string]string{"refresh_token": s.RefreshToken}, nil)
	return err
}

// Refresh trades the session's refresh token for a new session. The old refresh token
// stops working.
func (c *Client) Refresh(ctx context.Context, s *session.Session) (*session.Session, error) {
	if s == nil || s.RefreshToken == "" {
		return nil, &AuthError{StatusCode: http.StatusUnauthorized, Message: ErrNoSession.Error()}
	}
	var next session.Session
	_, err := c.do(ctx, http.MethodPost, "/auth/refresh-token", nil, map[string]string{"refresh_token": s.RefreshToken}, &next)
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// SessionStatus asks the server to classify s. A nil session is allowed and lands on
// the entry route.
func (c *Client) SessionStatus(ctx context.Context, s *session.Session) (*SessionStatus, error) {
	var status SessionStatus
	if _, err := c.do(ctx, http.MethodGet, "/auth/session", s, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Lookup adapts SessionStatus for session.Gate.
func (c *Client) Lookup(s *session.Session) session.LookupFunc {
	return func(ctx context.Context) (*session.Session, error) {
		status, err := c.SessionStatus(ctx, s)
		if err != nil {
			return nil, err
		}
		return status.Session, nil
	}
}

func (c *Client) UpdateDeviceToken(ctx context.Context, s *session.Session, token string) error {
	if err := requireSession(s); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPut, "/me/device-token", s, map[string]string{"token": token}, nil)
	return err
}

// CreateAppointment books an appointment. created is false when the server recognised
// the request id and returned the appointment it had already stored.
func (c *Client) CreateAppointment(ctx context.Context, s *session.Session, in AppointmentInput) (*Appointment, bool, error) {
	if err := requireSession(s); err != nil {
		return nil, false, err
	}
	var appointment Appointment
	status, err := c.do(ctx, http.MethodPost, "/appointments", s, in, &appointment)
	if err != nil {
		return nil, false, err
	}
	return &appointment, status == http.StatusCreated, nil
}

// ListAppointments returns the caller's appointments, newest first.
func (c *Client) ListAppointments(ctx context.Context, s *session.Session, includeCancelled bool) ([]Appointment, error) {
	if err := requireSession(s); err != nil {
		return nil, err
	}
	path := "/appointments"
	if includeCancelled {
		path += "?include_cancelled=true"
	}
	var list struct {
		Appointments []Appointment `json:"appointments"`
	}
	if _, err := c.do(ctx, http.MethodGet, path, s, nil, &list); err != nil {
		return nil, err
	}
	return list.Appointments, nil
}

func (c *Client) CancelAppointment(ctx context.Context, s *session.Session, id uuid.UUID) (*Appointment, error) {
	if err := requireSession(s); err != nil {
		return nil, err
	}
	var appointment Appointment
	if _, err := c.do(ctx, http.MethodPost, "/appointments/"+id.String()+"/cancel", s, nil, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Search matches hospital and doctor names. It needs no session.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	var result SearchResult
	if _, err := c.do(ctx, http.MethodGet, "/search?q="+url.QueryEscape(query), nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
