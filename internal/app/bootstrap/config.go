// internal/app/bootstrap/config.go
package bootstrap

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/chathub/internal/app/system/msgcrypt"
)

// appConfigKeys defines the configuration keys for ChatHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: CHATHUB_MONGO_URI, CHATHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "chathub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Bearer-token signing secret (must be strong in production)"},
	{Name: "token_ttl", Default: "24h", Desc: "Bearer token lifetime (e.g., 24h, 30m)"},

	{Name: "message_key", Default: "6d6573736167656b65792d6465766b65", Desc: "Hex-encoded AES-128 key for encrypting message bodies (32 hex chars)"},
	{Name: "max_message_length", Default: 5000, Desc: "Maximum chat message length in characters"},

	{Name: "cooldown_window", Default: "48h", Desc: "Wait before rejoining a private group after leaving or banishment"},
	{Name: "default_max_members", Default: 100, Desc: "Member cap applied when group creation omits one (0 disables the default)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CHATHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CHATHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		TokenTTL:  appValues.Duration("token_ttl", 24*time.Hour),

		MessageKey:       appValues.String("message_key"),
		MaxMessageLength: appValues.Int("max_message_length"),

		CooldownWindow:    appValues.Duration("cooldown_window", 48*time.Hour),
		DefaultMaxMembers: appValues.Int("default_max_members"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// ChatHub validates the MongoDB URI and the message encryption key early,
// before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	key, err := hex.DecodeString(appCfg.MessageKey)
	if err != nil || len(key) != msgcrypt.KeySize {
		return fmt.Errorf("message_key must be %d hex-encoded bytes", msgcrypt.KeySize)
	}

	if appCfg.DefaultMaxMembers < 0 || appCfg.DefaultMaxMembers == 1 {
		return fmt.Errorf("default_max_members must be 0 (disabled) or at least 2")
	}

	if appCfg.MaxMessageLength < 1 {
		return fmt.Errorf("max_message_length must be at least 1")
	}

	if coreCfg.Env == "prod" && appCfg.JWTSecret == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("jwt_secret must be changed from the development default in production")
	}

	return nil
}
