// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and format, and request limits. AppConfig is
// where everything specific to this application lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Token auth configuration
	JWTSecret string        // Signing secret for bearer tokens (must be strong in production)
	TokenTTL  time.Duration // Bearer token lifetime

	// MessageKey is the hex-encoded AES-128 key used to encrypt message
	// bodies at rest: 32 hex characters. Rotating it makes previously
	// stored messages unreadable.
	MessageKey string

	// MaxMessageLength caps chat message bodies, in characters.
	MaxMessageLength int

	// Membership policy
	CooldownWindow    time.Duration // Wait before rejoining a private group after leaving/banishment
	DefaultMaxMembers int           // Member cap applied when a create request omits one; 0 disables
}
