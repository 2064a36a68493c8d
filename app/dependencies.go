package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/upb/auth-gateway/config"
	"github.com/upb/auth-gateway/identity"
	"github.com/upb/auth-gateway/identity/firebaseidp"
	"github.com/upb/auth-gateway/identity/mockidp"
	"github.com/upb/auth-gateway/internal/observability"
	"github.com/upb/auth-gateway/middleware"
	"github.com/upb/auth-gateway/repositories"
	"github.com/upb/auth-gateway/repositories/memory"
	"github.com/upb/auth-gateway/repositories/postgres"
	redisstore "github.com/upb/auth-gateway/repositories/redis"
	"github.com/upb/auth-gateway/services/account"
	"github.com/upb/auth-gateway/services/audit"
	"github.com/upb/auth-gateway/services/profile"
	"go.uber.org/zap"
)

// eventLogLimit bounds the in-memory auth event log used without postgres
const eventLogLimit = 1000

// Dependencies holds all application dependencies.
// This is the central wiring point: the identity backend and the profile
// store are selected here once from config and never swapped afterwards.
type Dependencies struct {
	// Infrastructure
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	// Identity
	Identity identity.Provider
	MockIdP  *mockidp.Provider // set only in mock mode

	// Storage
	Profiles   repositories.ProfileStore
	AuthEvents repositories.AuthEventRepository

	// Services
	ProfileService *profile.ProfileService
	AccountService *account.AccountService
	AuditService   *audit.AuditService

	// Middleware
	AuthMiddleware *middleware.AuthMiddleware
	RoleGate       *middleware.RoleGate
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics()

	if err := deps.initStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize profile store: %w", err)
	}

	if err := deps.initIdentity(ctx); err != nil {
		deps.closeStore()
		return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
	}

	if err := deps.initServices(); err != nil {
		deps.closeStore()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	deps.AuthMiddleware = middleware.NewAuthMiddleware(deps.Identity, deps.ProfileService, deps.Metrics, logger)
	deps.RoleGate = middleware.NewRoleGate(deps.Metrics, logger)

	logger.Info("all dependencies initialized successfully",
		zap.String("auth_mode", string(cfg.Auth.Mode)),
		zap.String("profile_store", cfg.Store.Backend))
	return deps, nil
}

func (d *Dependencies) initMetrics() {
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = observability.NewMetrics(d.Registry)
}

// initStore opens the configured profile store and the matching auth event sink
func (d *Dependencies) initStore(ctx context.Context) error {
	storeCfg := d.Config.Store

	var store repositories.ProfileStore
	switch storeCfg.Backend {
	case config.StoreMemory:
		store = memory.NewProfileStore()
		d.AuthEvents = memory.NewEventLog(eventLogLimit, d.Logger)

	case config.StoreRedis:
		client, err := redisstore.NewClient(ctx, storeCfg.RedisURL)
		if err != nil {
			return err
		}
		store = redisstore.NewProfileStore(client, storeCfg.Namespace, d.Logger)
		d.AuthEvents = memory.NewEventLog(eventLogLimit, d.Logger)

	case config.StorePostgres:
		db, err := postgres.Open(ctx, storeCfg.Database, d.Logger)
		if err != nil {
			return err
		}
		store = postgres.NewProfileRepository(db, d.Logger)
		d.AuthEvents = postgres.NewAuthEventRepository(db, d.Logger)

	default:
		return fmt.Errorf("unknown profile store %q", storeCfg.Backend)
	}

	if storeCfg.CacheSize > 0 {
		cached := repositories.NewCachedStore(store, storeCfg.CacheSize, storeCfg.CacheTTL)
		d.Metrics.RegisterCacheStats(cached.Stats)
		store = cached
		d.Logger.Info("profile cache enabled",
			zap.Int("size", storeCfg.CacheSize),
			zap.Duration("ttl", storeCfg.CacheTTL))
	}

	d.Profiles = store
	d.Logger.Info("profile store initialized", zap.String("backend", storeCfg.Backend))
	return nil
}

// initIdentity builds the identity provider selected by the auth mode
func (d *Dependencies) initIdentity(ctx context.Context) error {
	switch d.Config.Auth.Mode {
	case config.AuthModeMock:
		return d.initMockIdentity(ctx)

	case config.AuthModeFirebase:
		fbCfg := firebaseidp.Config{
			ProjectID:          d.Config.Firebase.ProjectID,
			CredentialsFile:    d.Config.Firebase.CredentialsFile,
			AcceptCustomTokens: d.Config.Firebase.AcceptCustomTokens,
		}
		client, err := firebaseidp.NewAuthClient(ctx, fbCfg)
		if err != nil {
			return err
		}
		d.Identity = firebaseidp.New(client, fbCfg, d.Logger)
		d.Logger.Info("firebase identity provider initialized",
			zap.String("project_id", fbCfg.ProjectID),
			zap.Bool("accept_custom_tokens", fbCfg.AcceptCustomTokens))
		return nil
	}

	return fmt.Errorf("unknown auth mode %q", d.Config.Auth.Mode)
}

func (d *Dependencies) initMockIdentity(ctx context.Context) error {
	mockCfg := d.Config.Mock
	idp := mockidp.New(mockidp.Config{
		Secret:   mockCfg.JWTSecret,
		TokenTTL: mockCfg.TokenTTL,
		Issuer:   mockCfg.Issuer,
	}, d.Logger)

	var users []mockidp.SeedUser
	if mockCfg.LoadFixtures {
		users = append(users, mockidp.Fixtures()...)
	}
	if mockCfg.SeedFile != "" {
		seed, err := mockidp.LoadSeed(mockCfg.SeedFile)
		if err != nil {
			return err
		}
		users = append(users, seed.Users...)
	}

	if len(users) > 0 {
		if err := idp.Import(users...); err != nil {
			return err
		}
		if err := d.seedProfiles(ctx, users); err != nil {
			return err
		}
	}

	d.Identity = idp
	d.MockIdP = idp
	d.Logger.Warn("using mock identity provider; do not use in production",
		zap.Int("seeded_users", len(users)))
	return nil
}

// seedProfiles stores the profiles of seeded users. Profiles already in the
// store are kept.
func (d *Dependencies) seedProfiles(ctx context.Context, users []mockidp.SeedUser) error {
	now := time.Now()
	for _, su := range users {
		p := su.ToProfile(now)
		if p == nil {
			continue
		}

		_, err := d.Profiles.Get(ctx, p.UID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to read seeded profile %s: %w", p.UID, err)
		}
		if err := d.Profiles.Set(ctx, p.UID, p); err != nil {
			return fmt.Errorf("failed to store seeded profile %s: %w", p.UID, err)
		}
	}
	return nil
}

func (d *Dependencies) initServices() error {
	d.ProfileService = profile.NewProfileService(d.Profiles, d.Identity, d.Logger)
	d.AccountService = account.NewAccountService(d.Identity, d.Profiles, d.Logger)

	if !d.Config.Audit.Enabled {
		return nil
	}

	d.AuditService = audit.NewAuditService(d.AuthEvents, d.Logger, audit.Config{
		BufferSize:  d.Config.Audit.BufferSize,
		WorkerCount: d.Config.Audit.WorkerCount,
	})
	if err := d.AuditService.Start(); err != nil {
		return err
	}

	d.ProfileService.SetEventRecorder(d.AuditService)
	d.AccountService.SetEventRecorder(d.AuditService)
	return nil
}

func (d *Dependencies) closeStore() error {
	if closer, ok := d.Profiles.(repositories.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Drain the event trail before the store goes away
	if d.AuditService != nil {
		timeout := 5 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if err := d.AuditService.Stop(timeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		}
	}

	if err := d.closeStore(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close profile store: %w", err))
	} else {
		d.Logger.Info("profile store closed")
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return errors.Join(errs...)
}
