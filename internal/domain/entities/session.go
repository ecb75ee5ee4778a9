package entities

import (
	"time"
)

// Session holds the credential triple for an authenticated console session.
// ExpiresAt is advisory only; actual expiry is enforced by the backend via
// 401 responses.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SessionEventType identifies a session lifecycle transition
type SessionEventType string

const (
	SessionEventLogin        SessionEventType = "login"
	SessionEventRefreshed    SessionEventType = "refreshed"
	SessionEventLogout       SessionEventType = "logout"
	SessionEventForcedLogout SessionEventType = "forced_logout"
)

// SessionEvent is broadcast on the event bus so other console processes can
// observe session state changes
type SessionEvent struct {
	ID         string           `json:"id"`
	Type       SessionEventType `json:"type"`
	Reason     string           `json:"reason,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
