package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AuthMode selects the identity provider backend
type AuthMode string

const (
	AuthModeFirebase AuthMode = "firebase"
	AuthModeMock     AuthMode = "mock"
)

// Profile store backends
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Auth          AuthConfig
	Firebase      FirebaseConfig
	Mock          MockConfig
	Store         StoreConfig
	Audit         AuditConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  []string
}

// AuthConfig holds identity provider selection
type AuthConfig struct {
	Mode AuthMode
}

// FirebaseConfig holds Firebase Admin SDK configuration
type FirebaseConfig struct {
	ProjectID          string
	CredentialsFile    string
	AcceptCustomTokens bool // verify-then-decode fallback for custom tokens
}

// MockConfig holds configuration for the in-memory identity provider
type MockConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	Issuer    string
	SeedFile  string
	// LoadFixtures preloads the built-in test users and their static tokens
	LoadFixtures bool
}

// StoreConfig holds profile store configuration
type StoreConfig struct {
	Backend   string
	RedisURL  string
	Namespace string
	Database  DatabaseConfig
	CacheSize int // 0 disables the LRU cache
	CacheTTL  time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	AutoMigrate      bool
}

// AuditConfig holds auth event trail configuration. Events go to the
// auth_events table with the postgres store and to the log otherwise.
type AuditConfig struct {
	Enabled     bool
	BufferSize  int
	WorkerCount int
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or console
	MetricsEnabled bool
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	env := getEnv("ENVIRONMENT", "development")

	mode := AuthModeFirebase
	if getEnvAsBool("USE_MOCK_AUTH", false) {
		mode = AuthModeMock
	}

	defaultLevel := "debug"
	if isProductionEnv(env) {
		defaultLevel = "info"
	}

	cfg := &Config{
		Environment: env,
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 60*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Auth: AuthConfig{Mode: mode},
		Firebase: FirebaseConfig{
			ProjectID:          getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsFile:    getEnv("FIREBASE_CREDENTIALS_FILE", "keys/service-account.json"),
			AcceptCustomTokens: getEnvAsBool("FIREBASE_ACCEPT_CUSTOM_TOKENS", false),
		},
		Mock: MockConfig{
			JWTSecret:    getEnv("JWT_SECRET", "mock-secret-key-for-development"),
			TokenTTL:     getEnvAsDuration("MOCK_TOKEN_TTL", time.Hour),
			Issuer:       getEnv("MOCK_ISSUER", "mock-auth-service"),
			SeedFile:     getEnv("MOCK_SEED_FILE", ""),
			LoadFixtures: getEnvAsBool("MOCK_LOAD_FIXTURES", false),
		},
		Store: loadStoreConfig(env),
		Audit: AuditConfig{
			Enabled:     getEnvAsBool("AUDIT_ENABLED", true),
			BufferSize:  getEnvAsInt("AUDIT_BUFFER_SIZE", 1000),
			WorkerCount: getEnvAsInt("AUDIT_WORKERS", 2),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", defaultLevel),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeMock:
		if c.Mock.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in mock auth mode")
		}
		if c.Mock.TokenTTL <= 0 {
			return fmt.Errorf("MOCK_TOKEN_TTL must be positive")
		}
	case AuthModeFirebase:
		if c.IsProduction() && c.Firebase.ProjectID == "" {
			return fmt.Errorf("firebase project ID is required in production")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.Auth.Mode)
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis profile store")
		}
	case StorePostgres:
		db := c.Store.Database
		if db.ConnectionString == "" && db.Host == "" {
			return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
		}
		if db.ConnectionString == "" {
			if db.User == "" {
				return fmt.Errorf("database user is required")
			}
			if db.Database == "" {
				return fmt.Errorf("database name is required")
			}
		}
	default:
		return fmt.Errorf("unknown profile store %q", c.Store.Backend)
	}

	if c.Store.CacheSize < 0 {
		return fmt.Errorf("PROFILE_CACHE_SIZE cannot be negative")
	}

	if c.Audit.Enabled && (c.Audit.BufferSize <= 0 || c.Audit.WorkerCount <= 0) {
		return fmt.Errorf("AUDIT_BUFFER_SIZE and AUDIT_WORKERS must be positive")
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return isProductionEnv(c.Environment)
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsMockAuth reports whether the in-memory identity provider is selected
func (c *Config) IsMockAuth() bool {
	return c.Auth.Mode == AuthModeMock
}

func isProductionEnv(env string) bool {
	return env == "production" || env == "prod"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadStoreConfig picks the profile store. Without PROFILE_STORE, production
// with a REDIS_URL uses redis and everything else stays in memory.
func loadStoreConfig(env string) StoreConfig {
	redisURL := getEnv("REDIS_URL", "")

	backend := StoreMemory
	if isProductionEnv(env) && redisURL != "" {
		backend = StoreRedis
	}

	return StoreConfig{
		Backend:   strings.ToLower(getEnv("PROFILE_STORE", backend)),
		RedisURL:  redisURL,
		Namespace: getEnv("STORE_NAMESPACE", "users"),
		Database:  loadDatabaseConfig(),
		CacheSize: getEnvAsInt("PROFILE_CACHE_SIZE", 0),
		CacheTTL:  getEnvAsDuration("PROFILE_CACHE_TTL", 30*time.Second),
	}
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:      getEnvAsBool("DB_AUTO_MIGRATE", true),
		}
	}
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "dev"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "auth_gateway"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
	}
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 3001)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 3001
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
