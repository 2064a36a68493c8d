// Package memory provides an in-process ProfileStore used for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/repositories"
)

// ProfileStore keeps profiles in a map guarded by a RWMutex.
// Stored values are copied on the way in and out so callers never share memory with the store.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.UserProfile
}

// NewProfileStore creates an empty in-memory store
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]*models.UserProfile),
	}
}

// Get retrieves a profile by uid
func (s *ProfileStore) Get(_ context.Context, uid string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[uid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return profile.Clone(), nil
}

// Set creates or replaces a profile
func (s *ProfileStore) Set(_ context.Context, uid string, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[uid] = profile.Clone()
	return nil
}

// Delete removes a profile
func (s *ProfileStore) Delete(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.profiles, uid)
	return nil
}

// Clear removes all profiles
func (s *ProfileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles = make(map[string]*models.UserProfile)
	return nil
}

// Len returns the number of stored profiles
func (s *ProfileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
