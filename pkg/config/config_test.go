package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsupplypro/inventory/pkg/observability"
)

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}
			assert.Equal(t, tt.want, getEnv(tt.key, tt.defaultValue))
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getEnvBool("TEST_BOOL", false))
	assert.False(t, getEnvBool("TEST_BOOL_MISSING", false))

	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("TEST_INT", 1))
	assert.Equal(t, 1, getEnvInt("TEST_INT_MISSING", 1))

	t.Setenv("TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DUR", time.Minute))
	assert.Equal(t, time.Minute, getEnvDuration("TEST_DUR_MISSING", time.Minute))
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, splitCSV(" a@x.com , b@x.com ,,"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, observability.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, observability.WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, observability.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, observability.InfoLevel, parseLogLevel("bogus"))
}

func validTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8081", HealthPort: "9090"},
		Database: DatabaseConfig{
			PostgresURL: "postgres://localhost/inventory",
		},
		Auth: AuthConfig{
			AdminEmails:      []string{"alice@company.com"},
			OIDCClientID:     "client",
			OIDCClientSecret: "secret",
			OIDCRedirectURL:  "https://api.example.com/login/oauth2/code/google",
		},
		Audit: AuditConfig{RetentionDays: 90, RetentionSchedule: "0 3 * * *"},
	}
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	assert.NoError(t, validTestConfig().Validate())
}

func TestValidateFailsClosed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing postgres URL", func(c *Config) { c.Database.PostgresURL = "" }},
		{"missing OIDC client ID", func(c *Config) { c.Auth.OIDCClientID = "" }},
		{"missing OIDC secret", func(c *Config) { c.Auth.OIDCClientSecret = "" }},
		{"missing OIDC redirect", func(c *Config) { c.Auth.OIDCRedirectURL = "" }},
		{"malformed allow-list entry", func(c *Config) { c.Auth.AdminEmails = []string{"not-an-email"} }},
		{"zero retention", func(c *Config) { c.Audit.RetentionDays = 0 }},
		{"blank retention schedule", func(c *Config) { c.Audit.RetentionSchedule = "" }},
		{"port collision", func(c *Config) { c.Server.HealthPort = c.Server.Port }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateDemoModeSkipsOIDC(t *testing.T) {
	cfg := validTestConfig()
	cfg.Auth.DemoReadonly = true
	cfg.Auth.OIDCClientID = ""
	cfg.Auth.OIDCClientSecret = ""
	cfg.Auth.OIDCRedirectURL = ""
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SSP_POSTGRES_URL", "postgres://localhost/inventory")
	t.Setenv("SSP_ADMIN_EMAILS", "alice@company.com, bob@company.com")
	t.Setenv("SSP_DEMO_READONLY", "true")
	t.Setenv("SSP_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@company.com", "bob@company.com"}, cfg.Auth.AdminEmails)
	assert.True(t, cfg.Auth.DemoReadonly)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
}

func TestLandingURL(t *testing.T) {
	auth := AuthConfig{FrontendBaseURL: "https://app.example.com/", LandingPath: "/dashboard"}
	assert.Equal(t, "https://app.example.com/dashboard", auth.LandingURL())
}
