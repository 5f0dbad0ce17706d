// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, CORS, request limits). AppConfig is everything specific
// to CampusHub: the Mongo connection, session and token secrets, the
// Google OAuth client, the broadcast club set, and worker tuning.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // secret key for signing session cookies (must be strong in production)
	SessionName   string // cookie name for sessions
	SessionDomain string // cookie domain (blank means current host)

	// Bearer-token auth for API and mobile clients. Disabled when
	// JWTSecret is blank.
	JWTSecret string
	JWTExpiry time.Duration

	// Google OAuth configuration (sign-in is hidden when unset)
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL for OAuth callbacks (e.g. "https://campushub.example.edu")
	BaseURL string

	// BroadcastClubs are the pseudo-club sources whose announcements
	// every student sees regardless of subscriptions.
	BroadcastClubs []string

	// Worker tuning
	PromoteInterval time.Duration // scheduled-to-ongoing sweep cadence

	// Push-notification publishing (off when AMQPURL is blank)
	AMQPURL      string
	AMQPExchange string

	// Audit logging settings: "all", "db", "log", or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// SuperAdmin bootstrap: promotes this account to admin on startup
	SuperAdminEmail string
}
