// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging,
// CORS, body limits). AppConfig is everything specific to SainikHub: the
// MongoDB connection, session cookies, and the operation timeout ladder.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: sainikhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Operation timeout ladder for database calls
	TimeoutPing   time.Duration // liveness pings
	TimeoutShort  time.Duration // single-document lookups
	TimeoutMedium time.Duration // writes and multi-step operations
	TimeoutLong   time.Duration // listings and aggregations
}
