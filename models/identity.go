package models

import "time"

// DecodedToken holds the claims the gateway needs from a verified bearer token.
// It is never persisted.
type DecodedToken struct {
	UID           string
	Email         string
	EmailVerified bool
	ExpiresAt     time.Time
}

// UserRecord is the identity provider's canonical view of a user
type UserRecord struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email,omitempty"`
	DisplayName   string    `json:"displayName,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	Disabled      bool      `json:"disabled,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateUserParams are the attributes of a user to register with the identity provider
type CreateUserParams struct {
	Email       string
	Password    string
	DisplayName string
}
