package repositories

import (
	"context"
	"errors"

	"github.com/upb/auth-gateway/models"
)

// ErrNotFound is returned by ProfileStore.Get when no profile exists for the uid
var ErrNotFound = errors.New("profile not found")

// ProfileStore is the key-value store of user profiles keyed by uid.
// Implementations must be safe for concurrent use. There is no
// compare-and-set: concurrent Set calls for the same uid are last-write-wins.
type ProfileStore interface {
	// Get retrieves a profile by uid, returning ErrNotFound when absent
	Get(ctx context.Context, uid string) (*models.UserProfile, error)

	// Set creates or replaces the profile stored under uid
	Set(ctx context.Context, uid string, profile *models.UserProfile) error

	// Delete removes the profile stored under uid. Deleting a missing uid is not an error.
	Delete(ctx context.Context, uid string) error

	// Clear removes every profile in the store
	Clear(ctx context.Context) error
}

// HealthChecker is implemented by stores backed by a remote service
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by stores holding connections
type Closer interface {
	Close() error
}

// AuthEventRepository persists the auth event trail
type AuthEventRepository interface {
	Insert(ctx context.Context, event *models.AuthEvent) error
}
