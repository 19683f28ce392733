package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smartsupplypro/inventory/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Audit         AuditConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds postgres connection settings
type DatabaseConfig struct {
	PostgresURL  string
	MaxOpenConns int
	MaxIdleConns int
}

// AuthConfig holds the authorization and login flow settings.
type AuthConfig struct {
	// AdminEmails is the allow-list; membership grants ADMIN at login.
	AdminEmails []string
	// DemoReadonly blocks every write and opens whitelisted reads to
	// anonymous callers.
	DemoReadonly bool

	OIDCIssuerURL    string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string
	OIDCScopes       []string

	// FrontendBaseURL plus LandingPath is the post-login redirect.
	FrontendBaseURL string
	LandingPath     string

	SessionTTL time.Duration
}

// LandingURL is the absolute post-login redirect target.
func (a AuthConfig) LandingURL() string {
	return strings.TrimSuffix(a.FrontendBaseURL, "/") + a.LandingPath
}

// AuditConfig holds audit trail settings.
type AuditConfig struct {
	RetentionDays     int
	RetentionSchedule string
	// FilePath enables the secondary JSON-lines sink when non-empty.
	FilePath string
}

// ObservabilityConfig holds logging and metrics settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Auth:          loadAuthConfig(),
		Audit:         loadAuditConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SSP_HOST", "0.0.0.0"),
		Port:            getEnv("SSP_PORT", "8081"),
		ReadTimeout:     getEnvDuration("SSP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("SSP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("SSP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("SSP_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("SSP_HEALTH_PORT", "9090"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		PostgresURL:  getEnv("SSP_POSTGRES_URL", ""),
		MaxOpenConns: getEnvInt("SSP_POSTGRES_MAX_CONNS", 10),
		MaxIdleConns: getEnvInt("SSP_POSTGRES_IDLE_CONNS", 5),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		AdminEmails:      splitCSV(getEnv("SSP_ADMIN_EMAILS", "")),
		DemoReadonly:     getEnvBool("SSP_DEMO_READONLY", false),
		OIDCIssuerURL:    getEnv("SSP_OIDC_ISSUER_URL", "https://accounts.google.com"),
		OIDCClientID:     getEnv("SSP_OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("SSP_OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("SSP_OIDC_REDIRECT_URL", ""),
		OIDCScopes:       splitCSV(getEnv("SSP_OIDC_SCOPES", "openid,email,profile")),
		FrontendBaseURL:  getEnv("SSP_FRONTEND_BASE_URL", "http://localhost:5173"),
		LandingPath:      getEnv("SSP_LANDING_PATH", "/dashboard"),
		SessionTTL:       getEnvDuration("SSP_SESSION_TTL", 12*time.Hour),
	}
}

func loadAuditConfig() AuditConfig {
	return AuditConfig{
		RetentionDays:     getEnvInt("SSP_AUDIT_RETENTION_DAYS", 90),
		RetentionSchedule: getEnv("SSP_AUDIT_RETENTION_SCHEDULE", "0 3 * * *"),
		FilePath:          getEnv("SSP_AUDIT_FILE_PATH", ""),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       parseLogLevel(getEnv("SSP_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("SSP_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid. Authorization settings
// fail closed: a broken allow-list or OIDC setup refuses to start rather
// than running with a permissive fallback.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Database.PostgresURL == "" {
		return fmt.Errorf("postgres URL is required")
	}

	// A demo deployment may run without login configured; everything
	// else requires the full OIDC client.
	if !c.Auth.DemoReadonly {
		if c.Auth.OIDCClientID == "" {
			return fmt.Errorf("OIDC client ID is required")
		}
		if c.Auth.OIDCClientSecret == "" {
			return fmt.Errorf("OIDC client secret is required")
		}
		if c.Auth.OIDCRedirectURL == "" {
			return fmt.Errorf("OIDC redirect URL is required")
		}
	}
	for _, email := range c.Auth.AdminEmails {
		if !strings.Contains(email, "@") {
			return fmt.Errorf("admin allow-list entry %q is not an email address", email)
		}
	}

	if c.Audit.RetentionDays <= 0 {
		return fmt.Errorf("audit retention days must be positive")
	}
	if c.Audit.RetentionSchedule == "" {
		return fmt.Errorf("audit retention schedule is required")
	}

	return nil
}

// splitCSV splits a comma-separated list, trimming blanks.
func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
