package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Analytics AnalyticsConfig `mapstructure:"analytics" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig contains all database-related configuration settings.
// For postgres URL is a connection string; for sqlite it is a file path.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url"    validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	OwnerPassphraseHash  string `mapstructure:"owner_passphrase_hash"  validate:"required"`
	OwnerID              string `mapstructure:"owner_id"               validate:"required,uuid"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=10080"`
}

// AnalyticsConfig tunes the analytics engine.
type AnalyticsConfig struct {
	StreakGracePeriodDays int `mapstructure:"streak_grace_period_days" validate:"gte=0,lte=30"`
	SimilarLimit          int `mapstructure:"similar_limit"            validate:"gt=0,lte=50"`
}
