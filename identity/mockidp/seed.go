package mockidp

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/upb/auth-gateway/identity"
	"github.com/upb/auth-gateway/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SeedProfile is the profile to persist for a seeded user
type SeedProfile struct {
	Name string          `json:"name"`
	Bio  string          `json:"bio"`
	Role models.UserRole `json:"role"`
}

// SeedUser is a user preloaded into the provider. Tokens become static aliases.
// A nil Profile leaves the user without a stored profile, so the first
// authenticated request provisions one.
type SeedUser struct {
	UID           string       `json:"uid"`
	Email         string       `json:"email"`
	DisplayName   string       `json:"displayName"`
	Password      string       `json:"password,omitempty"`
	EmailVerified bool         `json:"emailVerified"`
	Tokens        []string     `json:"tokens,omitempty"`
	Profile       *SeedProfile `json:"profile,omitempty"`
}

// Seed is the on-disk seed document
type Seed struct {
	Users []SeedUser `json:"users"`
}

// LoadSeed reads a JSON seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Import adds users with fixed uids and registers their static tokens
func (p *Provider) Import(users ...SeedUser) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, su := range users {
		if su.UID == "" {
			return fmt.Errorf("seed user without uid")
		}
		email := strings.ToLower(strings.TrimSpace(su.Email))
		if other, ok := p.byEmail[email]; ok && email != "" && other != su.UID {
			return fmt.Errorf("seed user %s: %w", su.UID, identity.ErrEmailAlreadyExists)
		}

		u := &user{
			record: models.UserRecord{
				UID:           su.UID,
				Email:         email,
				DisplayName:   su.DisplayName,
				EmailVerified: su.EmailVerified,
				CreatedAt:     p.now().UTC(),
			},
		}
		if su.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), p.cost)
			if err != nil {
				return fmt.Errorf("seed user %s: failed to hash password: %w", su.UID, err)
			}
			u.passwordHash = hash
		}

		p.users[su.UID] = u
		if email != "" {
			p.byEmail[email] = su.UID
		}
		for _, token := range su.Tokens {
			p.aliases[token] = su.UID
		}
	}

	p.logger.Info("mock users imported", zap.Int("count", len(users)))
	return nil
}

// ToProfile builds the stored profile for a seeded user, or nil when the
// user has no profile.
func (su SeedUser) ToProfile(now time.Time) *models.UserProfile {
	if su.Profile == nil {
		return nil
	}

	profile := models.NewUserProfile(su.UID, strings.ToLower(su.Email), su.Profile.Name, now)
	if profile.Name == "" {
		profile.Name = su.DisplayName
	}
	profile.Bio = su.Profile.Bio
	if su.Profile.Role.IsValid() {
		profile.Role = su.Profile.Role
	}
	return profile
}

// Fixtures is the standard set of development users: one per role, plus a
// user that exists in the provider but has no stored profile yet.
func Fixtures() []SeedUser {
	return []SeedUser{
		{
			UID:         "test-user-1",
			Email:       "user@test.com",
			DisplayName: "Test User",
			Password:    "password123",
			Tokens:      []string{"valid-user-token"},
			Profile:     &SeedProfile{Name: "Test User", Bio: "Test bio", Role: models.RoleUser},
		},
		{
			UID:         "test-admin-1",
			Email:       "admin@test.com",
			DisplayName: "Test Admin",
			Password:    "password123",
			Tokens:      []string{"valid-admin-token"},
			Profile:     &SeedProfile{Name: "Test Admin", Bio: "Admin bio", Role: models.RoleAdmin},
		},
		{
			UID:         "test-super-1",
			Email:       "super@test.com",
			DisplayName: "Test Super Admin",
			Password:    "password123",
			Tokens:      []string{"valid-super-admin-token"},
			Profile:     &SeedProfile{Name: "Test Super Admin", Bio: "Super admin bio", Role: models.RoleSuperAdmin},
		},
		{
			UID:         "test-new-user",
			Email:       "newuser@test.com",
			DisplayName: "New Test User",
			Password:    "password123",
			Tokens:      []string{"valid-new-user-token"},
		},
	}
}
