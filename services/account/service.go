package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/upb/auth-gateway/identity"
	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/repositories"
	"github.com/upb/auth-gateway/services"
	"github.com/upb/auth-gateway/utils"
	"go.uber.org/zap"
)

// SignupInput is the body of a signup request
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name,omitempty"`
}

// SigninInput is the body of a signin request
type SigninInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SigninResult is a freshly minted token plus the caller's stored profile
type SigninResult struct {
	Token   string
	Profile *models.UserProfile
}

// AccountService drives the identity lifecycle: signup, signin, signout and
// email verification. Provider errors are translated into services errors.
type AccountService struct {
	provider identity.Provider
	store    repositories.ProfileStore
	events   services.EventRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountService creates a new AccountService instance
func NewAccountService(provider identity.Provider, store repositories.ProfileStore, logger *zap.Logger) *AccountService {
	return &AccountService{
		provider: provider,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventRecorder sends lifecycle events to rec
func (s *AccountService) SetEventRecorder(rec services.EventRecorder) {
	s.events = rec
}

// Signup registers a user with the identity provider and persists a default profile
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*models.UserProfile, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, credentialsError(err)
	}

	displayName := in.Name
	if displayName == "" {
		displayName = models.EmailLocalPart(in.Email)
	}

	record, err := s.provider.CreateUser(ctx, models.CreateUserParams{
		Email:       strings.ToLower(in.Email),
		Password:    in.Password,
		DisplayName: displayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailAlreadyExists):
			return nil, services.ErrEmailExists
		case errors.Is(err, identity.ErrInvalidEmail):
			return nil, services.ErrInvalidEmail
		case errors.Is(err, identity.ErrWeakPassword):
			return nil, services.ErrWeakPassword
		}
		return nil, services.ErrCreateUserFailed.Wrap(err)
	}

	profile := models.NewUserProfile(record.UID, record.Email, record.DisplayName, s.now())
	if err := s.store.Set(ctx, record.UID, profile); err != nil {
		return nil, services.ErrCreateUserFailed.Wrap(err)
	}

	s.logger.Info("user created",
		zap.String("uid", record.UID),
		zap.String("email", record.Email))
	services.RecordEvent(ctx, s.events, models.NewAuthEvent(models.AuthActionSignup, record.UID).
		WithDetails(map[string]string{"email": record.Email}))

	return profile, nil
}

// Signin checks the credentials and returns a token for the user. The
// password is only checked when the provider can verify passwords.
func (s *AccountService) Signin(ctx context.Context, in SigninInput) (*SigninResult, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, credentialsError(err)
	}

	record, err := s.provider.GetUserByEmail(ctx, strings.ToLower(in.Email))
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserNotFound):
			return nil, services.ErrInvalidCredentials
		case errors.Is(err, identity.ErrInvalidEmail):
			return nil, services.ErrInvalidEmail
		}
		return nil, services.ErrSignInFailed.Wrap(err)
	}

	if verifier, ok := s.provider.(identity.PasswordVerifier); ok {
		if err := verifier.VerifyPassword(ctx, record.UID, in.Password); err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) || errors.Is(err, identity.ErrUserNotFound) {
				return nil, services.ErrInvalidCredentials
			}
			return nil, services.ErrSignInFailed.Wrap(err)
		}
	}

	token, err := s.provider.CreateCustomToken(ctx, record.UID)
	if err != nil {
		return nil, services.ErrSignInFailed.Wrap(err)
	}

	profile, err := s.store.Get(ctx, record.UID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrProfileNotFound
		}
		return nil, services.ErrSignInFailed.Wrap(err)
	}

	s.logger.Info("user signed in", zap.String("uid", record.UID))
	services.RecordEvent(ctx, s.events, models.NewAuthEvent(models.AuthActionSignin, record.UID))

	return &SigninResult{Token: token, Profile: profile}, nil
}

// Signout revokes the user's refresh tokens when revokeAll is set and
// reports whether a revocation happened.
func (s *AccountService) Signout(ctx context.Context, uid string, revokeAll bool) (bool, error) {
	if revokeAll {
		if err := s.provider.RevokeRefreshTokens(ctx, uid); err != nil {
			return false, services.ErrSignOutFailed.Wrap(err)
		}
	}

	s.logger.Info("user signed out",
		zap.String("uid", uid),
		zap.Bool("revoke_all_tokens", revokeAll))
	services.RecordEvent(ctx, s.events, models.NewAuthEvent(models.AuthActionSignout, uid).
		WithDetails(map[string]bool{"revokeAllTokens": revokeAll}))

	return revokeAll, nil
}

// SetEmailVerified updates the email verification flag held by the identity provider
func (s *AccountService) SetEmailVerified(ctx context.Context, uid string, verified bool) error {
	updater, ok := s.provider.(identity.EmailVerificationUpdater)
	if !ok {
		return services.ErrEmailVerifyFailed
	}

	if err := updater.SetEmailVerified(ctx, uid, verified); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return services.ErrUserNotFound
		}
		return services.ErrEmailVerifyFailed.Wrap(err)
	}

	s.logger.Info("email verification status updated",
		zap.String("uid", uid),
		zap.Bool("email_verified", verified))
	services.RecordEvent(ctx, s.events, models.NewAuthEvent(models.AuthActionEmailVerification, uid).
		WithDetails(map[string]bool{"emailVerified": verified}))

	return nil
}

// credentialsError maps validator failures to client messages. Missing
// fields win over malformed ones.
func credentialsError(err error) error {
	var ve *utils.ValidationError
	if !errors.As(err, &ve) {
		return services.ErrInvalidRequestBody
	}
	var domainErr *services.DomainError
	switch {
	case ve.HasTag("required"):
		domainErr = services.ErrCredentialsRequired
	case ve.Tags["email"] == "email":
		domainErr = services.ErrInvalidEmail
	case ve.Tags["password"] == "min":
		domainErr = services.ErrPasswordTooShort
	default:
		domainErr = services.ErrInvalidRequestBody
	}
	return domainErr.WithDetail("fields", ve.Fields)
}
