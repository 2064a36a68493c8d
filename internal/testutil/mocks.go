// Package testutil holds testify mocks shared by package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/upb/auth-gateway/models"
)

// MockProfileStore is a mock implementation of repositories.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	args := m.Called(ctx, uid)
	if profile := args.Get(0); profile != nil {
		return profile.(*models.UserProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileStore) Set(ctx context.Context, uid string, profile *models.UserProfile) error {
	args := m.Called(ctx, uid, profile)
	return args.Error(0)
}

func (m *MockProfileStore) Delete(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockProfileStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockProvider is a mock implementation of identity.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) VerifyToken(ctx context.Context, token string) (*models.DecodedToken, error) {
	args := m.Called(ctx, token)
	if decoded := args.Get(0); decoded != nil {
		return decoded.(*models.DecodedToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) GetUser(ctx context.Context, uid string) (*models.UserRecord, error) {
	args := m.Called(ctx, uid)
	if record := args.Get(0); record != nil {
		return record.(*models.UserRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) GetUserByEmail(ctx context.Context, email string) (*models.UserRecord, error) {
	args := m.Called(ctx, email)
	if record := args.Get(0); record != nil {
		return record.(*models.UserRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) CreateUser(ctx context.Context, params models.CreateUserParams) (*models.UserRecord, error) {
	args := m.Called(ctx, params)
	if record := args.Get(0); record != nil {
		return record.(*models.UserRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) CreateCustomToken(ctx context.Context, uid string) (string, error) {
	args := m.Called(ctx, uid)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) RevokeRefreshTokens(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

// MockFullProvider also implements identity.PasswordVerifier and
// identity.EmailVerificationUpdater
type MockFullProvider struct {
	MockProvider
}

func (m *MockFullProvider) VerifyPassword(ctx context.Context, uid, password string) error {
	args := m.Called(ctx, uid, password)
	return args.Error(0)
}

func (m *MockFullProvider) SetEmailVerified(ctx context.Context, uid string, verified bool) error {
	args := m.Called(ctx, uid, verified)
	return args.Error(0)
}

// EventSink collects auth events synchronously
type EventSink struct {
	mu     sync.Mutex
	events []*models.AuthEvent
}

func (s *EventSink) Record(_ context.Context, event *models.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Actions returns the recorded actions in order
func (s *EventSink) Actions() []models.AuthAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuthAction, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Action)
	}
	return out
}

// Events returns the recorded events in order
func (s *EventSink) Events() []*models.AuthEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.AuthEvent(nil), s.events...)
}
