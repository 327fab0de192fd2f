// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig is everything specific to SpendHub. The
// struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session management (Google OAuth logins only; password logins
	// carry a bearer token)
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: spendhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Bearer-token configuration
	JWTSecret string        // HMAC secret for signing bearer tokens
	JWTExpiry time.Duration // Token lifetime (default: 24h)

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// BaseURL is this API's own public URL, used to build the OAuth
	// callback; FrontendURL is the SPA origin users land on after the
	// browser flows finish.
	BaseURL     string
	FrontendURL string

	// Gemini report generation
	GeminiAPIKey  string
	GeminiModel   string
	ReportTimeout time.Duration // Upper bound on one report's model call
}
