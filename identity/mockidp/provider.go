// Package mockidp is an in-memory identity provider for local development
// and tests. It signs HS256 tokens with a shared secret and keeps users in
// process memory, so nothing survives a restart.
package mockidp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upb/auth-gateway/identity"
	"github.com/upb/auth-gateway/models"
	"github.com/upb/auth-gateway/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultIssuer     = "mock-auth-service"
	defaultTTL        = time.Hour
	minPasswordLength = 6
)

// Config configures the mock provider
type Config struct {
	Secret     string
	TokenTTL   time.Duration
	Issuer     string
	BcryptCost int

	// Aliases maps opaque static tokens to uids, e.g. "valid-admin-token" -> "test-admin-1".
	Aliases map[string]string
}

type user struct {
	record       models.UserRecord
	passwordHash []byte
	// generation is bumped on revocation; older tokens are rejected
	generation int
}

// Provider implements identity.Provider, identity.PasswordVerifier and
// identity.EmailVerificationUpdater in memory.
type Provider struct {
	mu      sync.RWMutex
	users   map[string]*user
	byEmail map[string]string
	aliases map[string]string

	secret []byte
	ttl    time.Duration
	issuer string
	cost   int
	now    func() time.Time
	logger *zap.Logger
}

// New creates an empty mock provider
func New(cfg Config, logger *zap.Logger) *Provider {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	aliases := make(map[string]string, len(cfg.Aliases))
	for token, uid := range cfg.Aliases {
		aliases[token] = uid
	}

	return &Provider{
		users:   make(map[string]*user),
		byEmail: make(map[string]string),
		aliases: aliases,
		secret:  []byte(cfg.Secret),
		ttl:     cfg.TokenTTL,
		issuer:  cfg.Issuer,
		cost:    cfg.BcryptCost,
		now:     time.Now,
		logger:  logger,
	}
}

// VerifyToken accepts tokens signed by this provider and configured static aliases
func (p *Provider) VerifyToken(_ context.Context, token string) (*models.DecodedToken, error) {
	p.mu.RLock()
	aliasUID, isAlias := p.aliases[token]
	p.mu.RUnlock()

	if isAlias {
		decoded := &models.DecodedToken{UID: aliasUID, ExpiresAt: p.now().Add(p.ttl)}
		p.mu.RLock()
		if u, ok := p.users[aliasUID]; ok {
			decoded.Email = u.record.Email
			decoded.EmailVerified = u.record.EmailVerified
		}
		p.mu.RUnlock()
		return decoded, nil
	}

	claims, err := p.parseToken(token)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	u, ok := p.users[claims.UID]
	revoked := ok && claims.Generation < u.generation
	p.mu.RUnlock()

	if revoked {
		return nil, fmt.Errorf("%w: token revoked", identity.ErrInvalidToken)
	}
	return claims.decoded(), nil
}

// GetUser returns the record for uid
func (p *Provider) GetUser(_ context.Context, uid string) (*models.UserRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	u, ok := p.users[uid]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	record := u.record
	return &record, nil
}

// GetUserByEmail returns the record registered under email (case-insensitive)
func (p *Provider) GetUserByEmail(_ context.Context, email string) (*models.UserRecord, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := utils.ValidateEmail(email); err != nil {
		return nil, identity.ErrInvalidEmail
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	uid, ok := p.byEmail[email]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	record := p.users[uid].record
	return &record, nil
}

// CreateUser registers a user with a generated "mock-" uid
func (p *Provider) CreateUser(_ context.Context, params models.CreateUserParams) (*models.UserRecord, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if err := utils.ValidateEmail(email); err != nil {
		return nil, identity.ErrInvalidEmail
	}
	if len(params.Password) < minPasswordLength {
		return nil, identity.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), p.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, identity.ErrWeakPassword
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := params.DisplayName
	if displayName == "" {
		displayName = models.EmailLocalPart(email)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byEmail[email]; exists {
		return nil, identity.ErrEmailAlreadyExists
	}

	u := &user{
		record: models.UserRecord{
			UID:         newUID(),
			Email:       email,
			DisplayName: displayName,
			CreatedAt:   p.now().UTC(),
		},
		passwordHash: hash,
	}
	p.users[u.record.UID] = u
	p.byEmail[email] = u.record.UID

	p.logger.Info("mock user created",
		zap.String("uid", u.record.UID),
		zap.String("email", email))

	record := u.record
	return &record, nil
}

// CreateCustomToken signs a token for uid. Unlike a hosted provider the
// result is directly usable as a bearer token.
func (p *Provider) CreateCustomToken(_ context.Context, uid string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("uid is required")
	}

	p.mu.RLock()
	var (
		email      string
		verified   bool
		generation int
	)
	if u, ok := p.users[uid]; ok {
		email = u.record.Email
		verified = u.record.EmailVerified
		generation = u.generation
	}
	p.mu.RUnlock()

	return p.signToken(uid, email, verified, generation)
}

// RevokeRefreshTokens rejects every token issued for uid so far
func (p *Provider) RevokeRefreshTokens(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.generation++

	p.logger.Info("mock tokens revoked", zap.String("uid", uid))
	return nil
}

// VerifyPassword checks password against the stored bcrypt hash
func (p *Provider) VerifyPassword(_ context.Context, uid, password string) error {
	p.mu.RLock()
	u, ok := p.users[uid]
	var hash []byte
	if ok {
		hash = u.passwordHash
	}
	p.mu.RUnlock()

	if !ok {
		return identity.ErrUserNotFound
	}
	if len(hash) == 0 {
		return identity.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return identity.ErrInvalidCredentials
	}
	return nil
}

// SetEmailVerified updates the email-verified flag of uid
func (p *Provider) SetEmailVerified(_ context.Context, uid string, verified bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, ok := p.users[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.record.EmailVerified = verified

	p.logger.Info("mock email verification updated",
		zap.String("uid", uid),
		zap.Bool("email_verified", verified))
	return nil
}

// List returns every user ordered by creation time
func (p *Provider) List() []models.UserRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]models.UserRecord, 0, len(p.users))
	for _, u := range p.users {
		out = append(out, u.record)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UID < out[j].UID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Clear removes every user and returns how many were removed.
// Static aliases are kept.
func (p *Provider) Clear() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	count := len(p.users)
	p.users = make(map[string]*user)
	p.byEmail = make(map[string]string)

	p.logger.Info("mock users cleared", zap.Int("count", count))
	return count
}

func newUID() string {
	return "mock-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
