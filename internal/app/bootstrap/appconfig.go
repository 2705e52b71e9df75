// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where everything specific to this application lives:
// database names, cookie settings, OAuth credentials, and the union's
// own defaults.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: unionhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// CSRF protection
	CSRFKey string // Secret key for CSRF tokens (blank means a random per-boot key)

	// Base URL for OAuth callbacks and links in pages
	BaseURL string // e.g., "https://unionhub.or.ke" or "http://localhost:3000"

	// Audit logging: "all" (db+log), "db", "log", or "off"
	AuditLogMode string

	// Google OAuth configuration (blank disables Google sign-in)
	GoogleClientID     string
	GoogleClientSecret string

	// Bootstrap account: promoted to (or created as) president on startup
	PresidentEmail string
}
