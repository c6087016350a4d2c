// Package config loads the environment configuration of both binaries with
// go-envconfig.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Common holds settings shared by every binary.
type Common struct {
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	CORSOrigins     []string      `env:"CORS_ORIGINS,     default=*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c Common) IsDevelopment() bool { return c.Env == "development" }

// AuthConfig configures cmd/auth-service.
type AuthConfig struct {
	Common
	Port       string `env:"PORT,        default=3001"`
	BcryptCost int    `env:"BCRYPT_COST, default=10"`

	JWT   JWTConfig
	DB    DBConfig
	SMTP  SMTPConfig
	Mongo MongoConfig
	Redis RedisConfig
	Login LoginConfig
	Seed  SeedConfig
}

type JWTConfig struct {
	Secret    string        `env:"JWT_SECRET"`
	ExpiresIn time.Duration `env:"JWT_EXPIRES_IN, default=24h"`
}

type DBConfig struct {
	Host     string `env:"DB_HOST,     default=localhost"`
	Port     int    `env:"DB_PORT,     default=5432"`
	Name     string `env:"DB_NAME,     default=authdb"`
	User     string `env:"DB_USER,     default=postgres"`
	Password string `env:"DB_PASSWORD, default=postgres"`
	SSLMode  string `env:"DB_SSLMODE,  default=disable"`

	MaxOpenConns   int           `env:"DB_POOL_MAX_OPEN,        default=5"`
	MaxIdleConns   int           `env:"DB_POOL_MAX_IDLE,        default=2"`
	IdleTimeout    time.Duration `env:"DB_POOL_IDLE_TIMEOUT,    default=10s"`
	AcquireTimeout time.Duration `env:"DB_POOL_ACQUIRE_TIMEOUT, default=30s"`
}

type SMTPConfig struct {
	Host        string        `env:"SMTP_HOST"`
	Port        int           `env:"SMTP_PORT,    default=587"`
	User        string        `env:"SMTP_USER"`
	Password    string        `env:"SMTP_PASS"`
	From        string        `env:"SMTP_FROM,    default=Application Admin <noreply@example.com>"`
	Timeout     time.Duration `env:"SMTP_TIMEOUT, default=10s"`
	FrontendURL string        `env:"FRONTEND_URL, default=http://localhost:3002"`
}

// MongoConfig points at the audit trail database. An empty URI sends audit
// events to the log instead.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=identity_audit"`
}

// RedisConfig points at the login throttle store. An empty address disables
// throttling.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type LoginConfig struct {
	MaxFailures   int           `env:"LOGIN_MAX_FAILURES,   default=5"`
	FailureWindow time.Duration `env:"LOGIN_FAILURE_WINDOW, default=15m"`
}

// SeedConfig controls the default administrator created on first start.
type SeedConfig struct {
	AdminUsername string `env:"SEED_ADMIN_USERNAME, default=admin"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL,    default=admin@example.com"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

// GatewayConfig configures cmd/gateway.
type GatewayConfig struct {
	Common
	Port            string        `env:"PORT,                     default=3000"`
	AuthServiceURL  string        `env:"AUTH_SERVICE_URL,         default=http://auth-service:3001"`
	UserServiceURL  string        `env:"USER_SERVICE_URL,         default=http://user-service:8080"`
	UpstreamTimeout time.Duration `env:"GATEWAY_UPSTREAM_TIMEOUT, default=30s"`
}

// LoadAuth reads and validates the auth service configuration.
func LoadAuth(ctx context.Context) (*AuthConfig, error) {
	return loadAuth(ctx, envconfig.OsLookuper())
}

// LoadGateway reads and validates the gateway configuration.
func LoadGateway(ctx context.Context) (*GatewayConfig, error) {
	return loadGateway(ctx, envconfig.OsLookuper())
}

func loadAuth(ctx context.Context, l envconfig.Lookuper) (*AuthConfig, error) {
	var cfg AuthConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadGateway(ctx context.Context, l envconfig.Lookuper) (*GatewayConfig, error) {
	var cfg GatewayConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AuthConfig) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.ExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if c.DB.AcquireTimeout <= 0 {
		errs = append(errs, errors.New("DB_POOL_ACQUIRE_TIMEOUT must be positive"))
	}
	if c.DB.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_POOL_MAX_OPEN must be positive"))
	}
	if _, err := parseHTTPURL(c.SMTP.FrontendURL); err != nil {
		errs = append(errs, fmt.Errorf("FRONTEND_URL: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *GatewayConfig) Validate() error {
	var errs []error
	if _, err := parseHTTPURL(c.AuthServiceURL); err != nil {
		errs = append(errs, fmt.Errorf("AUTH_SERVICE_URL: %w", err))
	}
	if _, err := parseHTTPURL(c.UserServiceURL); err != nil {
		errs = append(errs, fmt.Errorf("USER_SERVICE_URL: %w", err))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("GATEWAY_UPSTREAM_TIMEOUT must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func parseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute http(s) URL", raw)
	}
	return u, nil
}
