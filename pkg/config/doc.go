// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings. Authorization-critical settings fail
// closed: the server refuses to start on a broken allow-list or missing
// OIDC client rather than falling back to a permissive default.
//
// # Configuration Structure
//
// Server settings:
//
//	SSP_HOST="0.0.0.0"
//	SSP_PORT="8081"
//	SSP_HEALTH_PORT="9090"
//	SSP_READ_TIMEOUT="15s"
//	SSP_WRITE_TIMEOUT="15s"
//
// Database settings:
//
//	SSP_POSTGRES_URL="postgres://localhost/inventory"
//	SSP_POSTGRES_MAX_CONNS="10"
//
// Authorization settings:
//
//	SSP_ADMIN_EMAILS="alice@company.com,ops@company.com"
//	SSP_DEMO_READONLY="false"
//	SSP_OIDC_ISSUER_URL="https://accounts.google.com"
//	SSP_OIDC_CLIENT_ID="..."
//	SSP_OIDC_CLIENT_SECRET="..."
//	SSP_OIDC_REDIRECT_URL="https://api.example.com/login/oauth2/code/google"
//	SSP_FRONTEND_BASE_URL="https://app.example.com"
//	SSP_SESSION_TTL="12h"
//
// Audit settings:
//
//	SSP_AUDIT_RETENTION_DAYS="90"
//	SSP_AUDIT_RETENTION_SCHEDULE="0 3 * * *"
//	SSP_AUDIT_FILE_PATH="/var/log/inventory/audit.jsonl"
//
// Observability settings:
//
//	SSP_LOG_LEVEL="info"  # debug, info, warn, error
//	SSP_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Demo mode: %v\n", cfg.Auth.DemoReadonly)
package config
