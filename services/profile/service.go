package profile

import (
	"context"
	"errors"
	"time"

	"github.com/upb/auth-gateway/identity"
	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/repositories"
	"github.com/upb/auth-gateway/services"
	"go.uber.org/zap"
)

// Update carries the profile fields a user may change. A nil field is left
// as is; a non-nil field replaces the stored value, even when empty.
type Update struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

// ProfileService reconciles verified identities with stored profiles
type ProfileService struct {
	store    repositories.ProfileStore
	provider identity.Provider
	events   services.EventRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(store repositories.ProfileStore, provider identity.Provider, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:    store,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventRecorder sends provisioning and update events to rec
func (s *ProfileService) SetEventRecorder(rec services.EventRecorder) {
	s.events = rec
}

// Reconcile returns the stored profile for a verified token, creating it on
// first sight. The stored profile wins over fresher token or provider data.
// created reports whether this call wrote a new profile.
//
// There is no lock between the read and the write: two concurrent first
// requests for one uid may both write, and the store keeps the last one.
func (s *ProfileService) Reconcile(ctx context.Context, token *models.DecodedToken) (profile *models.UserProfile, created bool, err error) {
	profile, err = s.store.Get(ctx, token.UID)
	if err == nil {
		return profile, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, services.ErrInternal.Wrap(err)
	}

	record, err := s.provider.GetUser(ctx, token.UID)
	if err != nil {
		return nil, false, services.ErrInternal.Wrap(err)
	}

	profile = models.NewUserProfile(token.UID, record.Email, record.DisplayName, s.now())
	if err := s.store.Set(ctx, token.UID, profile); err != nil {
		return nil, false, services.ErrInternal.Wrap(err)
	}

	s.logger.Info("provisioned profile on first sight",
		zap.String("uid", token.UID),
		zap.String("role", string(profile.Role)))
	services.RecordEvent(ctx, s.events, models.NewAuthEvent(models.AuthActionProfileProvisioned, token.UID))

	return profile, true, nil
}

// Update applies upd to the stored profile of uid. Only name and bio change.
func (s *ProfileService) Update(ctx context.Context, uid string, upd Update) (*models.UserProfile, error) {
	current, err := s.store.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrProfileNotFound
		}
		return nil, services.ErrUpdateProfileFailed.Wrap(err)
	}

	updated := current.Clone()
	if upd.Name != nil {
		updated.Name = *upd.Name
	}
	if upd.Bio != nil {
		updated.Bio = *upd.Bio
	}

	if err := s.store.Set(ctx, uid, updated); err != nil {
		return nil, services.ErrUpdateProfileFailed.Wrap(err)
	}

	s.logger.Debug("profile updated", zap.String("uid", uid))
	services.RecordEvent(ctx, s.events, models.NewAuthEvent(models.AuthActionProfileUpdated, uid).
		WithDetails(map[string]bool{"name": upd.Name != nil, "bio": upd.Bio != nil}))
	return updated, nil
}

// Get returns the stored profile for uid
func (s *ProfileService) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	profile, err := s.store.Get(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrProfileNotFound
		}
		return nil, services.ErrInternal.Wrap(err)
	}
	return profile, nil
}
