package models

import (
	"strings"
	"time"
)

// UserRole represents the role attached to a user profile
type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super-admin"
)

// TimestampLayout is the ISO-8601 layout used for CreatedAt (UTC, millisecond precision)
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// IsValid reports whether the role is one of the known roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// UserProfile is the locally persisted profile of an authenticated user
type UserProfile struct {
	UID       string   `json:"uid"`
	Email     string   `json:"email,omitempty"`
	Name      string   `json:"name"`
	Bio       string   `json:"bio"`
	Role      UserRole `json:"role"`
	CreatedAt string   `json:"createdAt"`
}

// NewUserProfile creates a profile with the default role and an empty bio.
// Role is always RoleUser: elevation only happens outside this service.
func NewUserProfile(uid, email, name string, now time.Time) *UserProfile {
	return &UserProfile{
		UID:       uid,
		Email:     email,
		Name:      name,
		Bio:       "",
		Role:      RoleUser,
		CreatedAt: FormatTimestamp(now),
	}
}

// DisplayName returns the name used in greetings, falling back to the email
func (p *UserProfile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

// HasAnyRole reports whether the profile's role is in roles
func (p *UserProfile) HasAnyRole(roles ...UserRole) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy of the profile
func (p *UserProfile) Clone() *UserProfile {
	c := *p
	return &c
}

// FormatTimestamp formats t as an ISO-8601 UTC timestamp
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// EmailLocalPart returns the part of an email address before the '@'
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
