package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserProfile(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 11, 12, 345000000, time.FixedZone("UTC+2", 2*60*60))

	p := NewUserProfile("uid-1", "a@example.com", "Alice", now)

	assert.Equal(t, "uid-1", p.UID)
	assert.Equal(t, "a@example.com", p.Email)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "", p.Bio)
	assert.Equal(t, RoleUser, p.Role)
	assert.Equal(t, "2024-03-05T08:11:12.345Z", p.CreatedAt)

	parsed, err := time.Parse(time.RFC3339, p.CreatedAt)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now))
}

func TestUserRole_IsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleSuperAdmin.IsValid())
	assert.False(t, UserRole("root").IsValid())
	assert.False(t, UserRole("").IsValid())
}

func TestUserProfile_HasAnyRole(t *testing.T) {
	admin := &UserProfile{Role: RoleAdmin}
	user := &UserProfile{Role: RoleUser}

	assert.True(t, admin.HasAnyRole(RoleAdmin, RoleSuperAdmin))
	assert.False(t, user.HasAnyRole(RoleAdmin, RoleSuperAdmin))
	assert.False(t, admin.HasAnyRole())
}

func TestUserProfile_DisplayName(t *testing.T) {
	assert.Equal(t, "Bob", (&UserProfile{Name: "Bob", Email: "b@x.io"}).DisplayName())
	assert.Equal(t, "b@x.io", (&UserProfile{Email: "b@x.io"}).DisplayName())
}

func TestUserProfile_JSON(t *testing.T) {
	p := UserProfile{UID: "u", Name: "N", Role: RoleSuperAdmin, CreatedAt: "2023-01-01T00:00:00.000Z"}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "super-admin", raw["role"])
	assert.Equal(t, "2023-01-01T00:00:00.000Z", raw["createdAt"])
	assert.Equal(t, "", raw["bio"])
	_, hasEmail := raw["email"]
	assert.False(t, hasEmail, "empty email is omitted")
}

func TestEmailLocalPart(t *testing.T) {
	assert.Equal(t, "testuser", EmailLocalPart("testuser@example.com"))
	assert.Equal(t, "plain", EmailLocalPart("plain"))
}

func TestUserProfile_Clone(t *testing.T) {
	p := &UserProfile{UID: "u", Name: "before"}
	c := p.Clone()
	c.Name = "after"
	assert.Equal(t, "before", p.Name)
}

func TestNewAuthEvent(t *testing.T) {
	e := NewAuthEvent(AuthActionSignin, "u1").
		WithRequest("req-1").
		WithDetails(map[string]interface{}{"email": "a@example.com"})

	assert.NotEqual(t, [16]byte{}, [16]byte(e.ID))
	assert.Equal(t, AuthActionSignin, e.Action)
	assert.Equal(t, "u1", e.UID)
	assert.Equal(t, "req-1", e.RequestID)
	assert.Equal(t, time.UTC, e.Timestamp.Location())
	assert.JSONEq(t, `{"email":"a@example.com"}`, string(e.Details))
	assert.Equal(t, "auth_events", AuthEvent{}.TableName())

	var decoded map[string]interface{}
	raw, err := json.Marshal(e)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "signin", decoded["action"])
}
