package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuthAction names an identity lifecycle event
type AuthAction string

const (
	AuthActionSignup             AuthAction = "signup"
	AuthActionSignin             AuthAction = "signin"
	AuthActionSignout            AuthAction = "signout"
	AuthActionProfileProvisioned AuthAction = "profile_provisioned"
	AuthActionProfileUpdated     AuthAction = "profile_updated"
	AuthActionEmailVerification  AuthAction = "email_verification_updated"
)

// AuthEvent is one entry of the auth event trail
type AuthEvent struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Action    AuthAction      `json:"action" db:"action"`
	UID       string          `json:"uid" db:"uid"`
	RequestID string          `json:"request_id,omitempty" db:"request_id"`
	Details   json.RawMessage `json:"details,omitempty" db:"details"` // JSONB
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the AuthEvent model
func (AuthEvent) TableName() string {
	return "auth_events"
}

// NewAuthEvent creates a new AuthEvent instance
func NewAuthEvent(action AuthAction, uid string) *AuthEvent {
	return &AuthEvent{
		ID:        uuid.New(),
		Action:    action,
		UID:       uid,
		Timestamp: time.Now().UTC(),
	}
}

// WithDetails sets the details
func (e *AuthEvent) WithDetails(details interface{}) *AuthEvent {
	if data, err := json.Marshal(details); err == nil {
		e.Details = data
	}
	return e
}

// WithRequest sets the request id
func (e *AuthEvent) WithRequest(requestID string) *AuthEvent {
	e.RequestID = requestID
	return e
}
