// Package identity defines the contract between the gateway and the external
// identity provider that owns credentials and issues bearer tokens.
package identity

import (
	"context"
	"errors"

	"github.com/upb/auth-gateway/models"
)

// Provider errors. Implementations translate their native error codes into these.
var (
	ErrUserNotFound       = errors.New("identity: user not found")
	ErrEmailAlreadyExists = errors.New("identity: email already exists")
	ErrInvalidEmail       = errors.New("identity: invalid email")
	ErrWeakPassword       = errors.New("identity: weak password")
	ErrInvalidToken       = errors.New("identity: invalid token")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

// Provider is the identity provider used by the gateway.
// Every method may block on network I/O and honours ctx cancellation.
type Provider interface {
	// VerifyToken checks signature, expiry and audience of a bearer token.
	// Any failure is reported as an error wrapping ErrInvalidToken.
	VerifyToken(ctx context.Context, token string) (*models.DecodedToken, error)

	// GetUser looks up the provider's record for uid
	GetUser(ctx context.Context, uid string) (*models.UserRecord, error)

	// GetUserByEmail looks up the provider's record for an email address
	GetUserByEmail(ctx context.Context, email string) (*models.UserRecord, error)

	// CreateUser registers new credentials
	CreateUser(ctx context.Context, params models.CreateUserParams) (*models.UserRecord, error)

	// CreateCustomToken mints a token the client can exchange or present for uid
	CreateCustomToken(ctx context.Context, uid string) (string, error)

	// RevokeRefreshTokens invalidates every refresh token issued to uid
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// PasswordVerifier is implemented by providers that can check a password server-side.
// Providers without it leave password checks to the client SDK.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, uid, password string) error
}

// EmailVerificationUpdater is implemented by providers that allow toggling
// the email-verified flag of a user.
type EmailVerificationUpdater interface {
	SetEmailVerified(ctx context.Context, uid string, verified bool) error
}
