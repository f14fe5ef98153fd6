// Package session classifies an auth session into the area of the app it may enter and
// keeps that classification current while auth-state events arrive.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Route is the top-level area a client should show.
type Route string

const (
	RouteUnknown Route = "unknown"
	RouteMain    Route = "main"
	RouteEntry   Route = "entry"
)

// EventType names an auth-state change.
type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
	EventUserUpdated    EventType = "USER_UPDATED"
)

type User struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
}

// Session is the authenticated state a client holds between calls.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

// Event is one auth-state change. Session is nil after sign-out.
type Event struct {
	Type    EventType `json:"type"`
	Session *Session  `json:"session"`
	Route   Route     `json:"route,omitempty"`
}

// Classify maps a session to a route. Only a session whose user has confirmed the email
// reaches the main area.
func Classify(s *Session) Route {
	if s == nil || s.User == nil {
		return RouteEntry
	}
	if s.User.EmailConfirmedAt == nil || s.User.EmailConfirmedAt.IsZero() {
		return RouteEntry
	}
	return RouteMain
}

// ClassifyLookup folds a lookup error into the entry route.
func ClassifyLookup(s *Session, err error) Route {
	if err != nil {
		return RouteEntry
	}
	return Classify(s)
}
